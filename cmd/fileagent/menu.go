// Interactive menu: collects input, calls one helper, prints the outcome, and
// returns to the menu. No failure is fatal to the process.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/agent"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/config"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/githubpush"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/search"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/tabular"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/textedit"
)

// textExtensions are the file types offered by the text-replace search.
var textExtensions = []string{".txt", ".md", ".json", ".csv", ".py", ".go", ".yaml", ".yml"}

type menu struct {
	cfg    config.Config
	editor *agent.Editor
	log    logger.Logger
	in     *bufio.Scanner
	out    io.Writer
}

func newMenu(cfg config.Config, editor *agent.Editor, log logger.Logger, in io.Reader, out io.Writer) *menu {
	return &menu{
		cfg:    cfg,
		editor: editor,
		log:    log,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// run loops until the user quits or stdin closes.
func (m *menu) run() {
	for {
		m.printMenu()
		choice, ok := m.prompt("Enter 1, 2, 3, 4, or q: ")
		if !ok {
			return
		}
		switch strings.ToLower(choice) {
		case "1":
			m.runTabularEdit()
		case "2":
			m.runPushFolder()
		case "3":
			m.runTextReplace()
		case "4":
			m.runFindAndPush()
		case "q", "quit", "exit":
			fmt.Fprintln(m.out, "Goodbye!")
			return
		case "":
			continue
		default:
			fmt.Fprintf(m.out, "Invalid choice: %s\n", choice)
		}
	}
}

func (m *menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "=== AI Agent Tools ===")
	fmt.Fprintln(m.out, "  1: Modify tabular file (CSV/XLSX agent)")
	fmt.Fprintln(m.out, "  2: Push folder to GitHub")
	fmt.Fprintln(m.out, "  3: Replace text in files")
	fmt.Fprintln(m.out, "  4: Find folder and push to GitHub")
	fmt.Fprintln(m.out, "  q: Quit")
}

// prompt prints a label and reads one trimmed line. ok is false on EOF.
func (m *menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// runTabularEdit drives the natural-language tabular edit (menu option 1).
func (m *menu) runTabularEdit() {
	fmt.Fprintln(m.out, "\n--- Tabular File Agent ---")
	path, ok := m.prompt("Path to the CSV/XLSX file: ")
	if !ok || path == "" {
		fmt.Fprintln(m.out, "A file path is required.")
		return
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		answer, ok := m.prompt("File does not exist. Create a sample sales table there? [y/N]: ")
		if !ok || !strings.EqualFold(answer, "y") {
			fmt.Fprintf(m.out, "File not found: %s\n", path)
			return
		}
		if err := tabular.WriteSample(path); err != nil {
			fmt.Fprintf(m.out, "Error creating sample file: %v\n", err)
			return
		}
		fmt.Fprintf(m.out, "Sample table written to %s\n", path)
	}

	instruction, ok := m.prompt("What should be changed? ")
	if !ok || instruction == "" {
		fmt.Fprintln(m.out, "An instruction is required.")
		return
	}

	result, err := m.editor.EditFile(context.Background(), path, instruction)
	if err != nil {
		if errors.Is(err, agent.ErrNoMutation) {
			fmt.Fprintln(m.out, "The agent could not produce a usable edit; the file was not modified.")
			return
		}
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Applied (%s tier): %s [%d row(s)]\n", result.Tier, result.Statement, result.Rows)
	fmt.Fprintf(m.out, "Saved %s (backup at %s)\n", path, textedit.BackupPath(path))
}

// runPushFolder drives the direct GitHub push (menu option 2).
func (m *menu) runPushFolder() {
	fmt.Fprintln(m.out, "\n--- GitHub Folder Push ---")
	repoName, _ := m.prompt("GitHub repository name: ")
	folder, _ := m.prompt("Path to the local folder: ")
	message, _ := m.prompt("Commit message: ")
	if repoName == "" || folder == "" || message == "" {
		fmt.Fprintln(m.out, "Repository name, folder path, and commit message are all required.")
		return
	}
	m.push(repoName, folder, message)
}

// runTextReplace drives search-then-replace (menu option 3).
func (m *menu) runTextReplace() {
	fmt.Fprintln(m.out, "\n--- Replace Text in Files ---")
	query, ok := m.prompt("File name or pattern to search: ")
	if !ok || query == "" {
		fmt.Fprintln(m.out, "A search pattern is required.")
		return
	}

	results, err := search.Find(query, search.Options{
		Roots:      m.cfg.SearchRoots,
		Extensions: textExtensions,
		Limit:      10,
		Verbose:    m.cfg.Verbose,
		Logger:     m.log,
	})
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if len(results) == 0 {
		fmt.Fprintln(m.out, "No matching files found.")
		return
	}

	fmt.Fprintln(m.out, "Matches:")
	for i, r := range results {
		fmt.Fprintf(m.out, "  %d. %s\n", i+1, r.Path)
	}
	pick, _ := m.prompt("Pick file number: ")
	idx, err := strconv.Atoi(pick)
	if err != nil || idx < 1 || idx > len(results) {
		fmt.Fprintln(m.out, "Invalid selection.")
		return
	}
	path := results[idx-1].Path

	find, _ := m.prompt("Text to find: ")
	if find == "" {
		fmt.Fprintln(m.out, "Text to find cannot be empty.")
		return
	}
	replace, _ := m.prompt("Replace with: ")

	count, err := textedit.Replace(path, find, replace, m.log)
	if err != nil {
		fmt.Fprintf(m.out, "Error updating %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(m.out, "Replaced %d occurrence(s) in %s. Backup: %s\n", count, path, textedit.BackupPath(path))
}

// runFindAndPush fuzzy-locates a folder and pushes it (menu option 4).
func (m *menu) runFindAndPush() {
	fmt.Fprintln(m.out, "\n--- Find and Push Folder ---")
	query, _ := m.prompt("Folder name or pattern to search: ")
	repoName, _ := m.prompt("Target GitHub repo name (created if missing): ")
	if query == "" || repoName == "" {
		fmt.Fprintln(m.out, "Folder query and repo name are required.")
		return
	}
	message, _ := m.prompt("Commit message: ")
	if message == "" {
		message = "Automated update"
	}

	dirs, err := search.FindDirs(query, search.Options{
		Roots:   m.cfg.SearchRoots,
		Limit:   5,
		Verbose: m.cfg.Verbose,
		Logger:  m.log,
	})
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if len(dirs) == 0 {
		fmt.Fprintf(m.out, "No folders found matching %q.\n", query)
		return
	}
	fmt.Fprintf(m.out, "Found folder: %s\n", dirs[0].Path)
	m.push(repoName, dirs[0].Path, message)
}

// push runs one folder push and prints the summary.
func (m *menu) push(repoName, folder, message string) {
	pusher, err := githubpush.New(githubpush.Options{
		Token:       m.cfg.GitHubToken,
		ExtraIgnore: m.cfg.IgnorePatterns,
		Verbose:     m.cfg.Verbose,
		Logger:      m.log,
	})
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	result, err := pusher.PushFolder(context.Background(), repoName, folder, message)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Pushed to %s: %d created, %d updated, %d skipped.\n",
		result.Repo, result.Created, result.Updated, result.Skipped)
	for _, f := range result.Failed {
		fmt.Fprintf(m.out, "  warning: %s: %s\n", f.Path, f.Reason)
	}
}
