package githubpush

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory GitHub: repos map to path->content file sets.
type fakeAPI struct {
	login     string
	repos     map[string]map[string][]byte
	shas      map[string]string // "repo/path" -> sha served by FileSHA
	failPaths map[string]error  // per-path create/update failures
	authErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		login:     "tester",
		repos:     map[string]map[string][]byte{},
		shas:      map[string]string{},
		failPaths: map[string]error{},
	}
}

func (f *fakeAPI) AuthenticatedLogin(context.Context) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return f.login, nil
}

func (f *fakeAPI) RepoExists(_ context.Context, owner, name string) (bool, error) {
	if owner != f.login {
		return false, errors.New("unknown owner")
	}
	_, ok := f.repos[name]
	return ok, nil
}

func (f *fakeAPI) CreateRepo(_ context.Context, name string) error {
	f.repos[name] = map[string][]byte{}
	return nil
}

func (f *fakeAPI) FileSHA(_ context.Context, _, repo, path string) (string, bool, error) {
	files, ok := f.repos[repo]
	if !ok {
		return "", false, errors.New("repository does not exist")
	}
	if _, ok := files[path]; !ok {
		return "", false, nil
	}
	if sha, ok := f.shas[repo+"/"+path]; ok {
		return sha, true, nil
	}
	return "sha-" + path, true, nil
}

func (f *fakeAPI) CreateFile(_ context.Context, _, repo, path, _ string, content []byte) error {
	if err := f.failPaths[path]; err != nil {
		return err
	}
	f.repos[repo][path] = content
	return nil
}

func (f *fakeAPI) UpdateFile(_ context.Context, _, repo, path, _ string, content []byte, sha string) error {
	if err := f.failPaths[path]; err != nil {
		return err
	}
	if sha != "sha-"+path {
		return errors.New("409 sha mismatch")
	}
	f.repos[repo][path] = content
	return nil
}

func newTestPusher(t *testing.T, api *fakeAPI) *Pusher {
	t.Helper()
	p, err := NewWithAPI(api, Options{})
	require.NoError(t, err)
	return p
}

func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Options{Token: "  "})
	assert.ErrorIs(t, err, ErrAuth)
}

func TestPushCreatesRepoAndFiles(t *testing.T) {
	api := newFakeAPI()
	folder := t.TempDir()
	writeTree(t, folder, map[string][]byte{
		"README.md":        []byte("# hi"),
		"src/main.go":      []byte("package main"),
		"docs/notes.txt":   []byte("notes"),
		"image.bin":        {0xff, 0xfe, 0x00, 0x80},
		".env":             []byte("SECRET=1"),
		"debug.log":        []byte("log line"),
		".git/config":      []byte("[core]"),
		"venv/lib/site.py": []byte("x = 1"),
	})

	result, err := newTestPusher(t, api).PushFolder(context.Background(), "demo", folder, "initial")
	require.NoError(t, err)

	assert.Equal(t, "tester/demo", result.Repo)
	assert.Equal(t, 3, result.Created)
	assert.Zero(t, result.Updated)
	assert.Empty(t, result.Failed)

	files := api.repos["demo"]
	require.NotNil(t, files)
	assert.Len(t, files, 3)
	assert.Equal(t, []byte("package main"), files["src/main.go"])
	assert.NotContains(t, files, ".env")
	assert.NotContains(t, files, "debug.log")
	assert.NotContains(t, files, "image.bin")
}

func TestPushUpdatesExistingFiles(t *testing.T) {
	api := newFakeAPI()
	api.repos["demo"] = map[string][]byte{"README.md": []byte("old")}

	folder := t.TempDir()
	writeTree(t, folder, map[string][]byte{
		"README.md": []byte("new"),
		"extra.txt": []byte("x"),
	})

	result, err := newTestPusher(t, api).PushFolder(context.Background(), "demo", folder, "update")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []byte("new"), api.repos["demo"]["README.md"])
}

func TestPushStaleSHAIsRecoverablePerFile(t *testing.T) {
	api := newFakeAPI()
	api.repos["demo"] = map[string][]byte{
		"stale.txt": []byte("old"),
		"ok.txt":    []byte("old"),
	}
	api.shas["demo/stale.txt"] = "sha-concurrently-changed"

	folder := t.TempDir()
	writeTree(t, folder, map[string][]byte{
		"stale.txt": []byte("new"),
		"ok.txt":    []byte("new"),
	})

	result, err := newTestPusher(t, api).PushFolder(context.Background(), "demo", folder, "update")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "stale.txt", result.Failed[0].Path)
	assert.Equal(t, []byte("new"), api.repos["demo"]["ok.txt"])
	assert.Equal(t, []byte("old"), api.repos["demo"]["stale.txt"])
}

func TestPushAuthFailureAborts(t *testing.T) {
	api := newFakeAPI()
	api.authErr = ErrAuth

	folder := t.TempDir()
	writeTree(t, folder, map[string][]byte{"a.txt": []byte("a")})

	_, err := newTestPusher(t, api).PushFolder(context.Background(), "demo", folder, "m")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestPushMissingFolder(t *testing.T) {
	api := newFakeAPI()
	_, err := newTestPusher(t, api).PushFolder(context.Background(), "demo", filepath.Join(t.TempDir(), "gone"), "m")
	assert.Error(t, err)
}

func TestPushExtraIgnorePatterns(t *testing.T) {
	api := newFakeAPI()
	folder := t.TempDir()
	writeTree(t, folder, map[string][]byte{
		"keep.txt":  []byte("keep"),
		"skip.data": []byte("skip"),
	})

	p, err := NewWithAPI(api, Options{ExtraIgnore: []string{"*.data"}})
	require.NoError(t, err)
	result, err := p.PushFolder(context.Background(), "demo", folder, "m")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.NotContains(t, api.repos["demo"], "skip.data")
}

func TestIgnoreSet(t *testing.T) {
	s := newIgnoreSet(nil)
	for _, name := range []string{".git", "node_modules", "__pycache__", "app.log", "old.bak", ".env", ".env.local"} {
		assert.True(t, s.match(name), name)
	}
	for _, name := range []string{"main.go", "README.md", "environment.txt"} {
		assert.False(t, s.match(name), name)
	}
}
