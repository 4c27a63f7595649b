// go-github-backed implementation of the API interface.
package githubpush

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v60/github"
)

type restAPI struct {
	client *github.Client
}

// newRESTAPI builds the real GitHub client from a personal access token.
func newRESTAPI(token string) *restAPI {
	return &restAPI{client: github.NewClient(nil).WithAuthToken(token)}
}

func (a *restAPI) AuthenticatedLogin(ctx context.Context) (string, error) {
	user, resp, err := a.client.Users.Get(ctx, "")
	if err != nil {
		return "", classify(resp, err)
	}
	return user.GetLogin(), nil
}

func (a *restAPI) RepoExists(ctx context.Context, owner, name string) (bool, error) {
	_, resp, err := a.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if notFound(resp) {
			return false, nil
		}
		return false, classify(resp, err)
	}
	return true, nil
}

func (a *restAPI) CreateRepo(ctx context.Context, name string) error {
	repo := &github.Repository{
		Name:    github.String(name),
		Private: github.Bool(false),
	}
	_, resp, err := a.client.Repositories.Create(ctx, "", repo)
	if err != nil {
		return classify(resp, err)
	}
	return nil
}

func (a *restAPI) FileSHA(ctx context.Context, owner, repo, path string) (string, bool, error) {
	fileContent, _, resp, err := a.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if notFound(resp) {
			return "", false, nil
		}
		return "", false, classify(resp, err)
	}
	if fileContent == nil {
		return "", false, fmt.Errorf("remote path is a directory: %s", path)
	}
	return fileContent.GetSHA(), true, nil
}

func (a *restAPI) CreateFile(ctx context.Context, owner, repo, path, message string, content []byte) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}
	_, resp, err := a.client.Repositories.CreateFile(ctx, owner, repo, path, opts)
	if err != nil {
		return classify(resp, err)
	}
	return nil
}

func (a *restAPI) UpdateFile(ctx context.Context, owner, repo, path, message string, content []byte, sha string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		SHA:     github.String(sha),
	}
	_, resp, err := a.client.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	if err != nil {
		return classify(resp, err)
	}
	return nil
}

// notFound reports a 404 response.
func notFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// classify wraps 401 errors with ErrAuth so callers can abort.
func classify(resp *github.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return err
}
