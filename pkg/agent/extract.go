// Fragment extraction for malformed model output. Small local models often
// put the statement in prose, a code fence, or a backtick span instead of a
// tool call; this recovers the first fragment that parses.
package agent

import (
	"regexp"
	"strings"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/tabular"
)

var (
	fenceRe    = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\n?(.*?)```")
	backtickRe = regexp.MustCompile("`([^`\n]+)`")
)

// extractStatement scans raw model output for an embedded edit statement,
// preferring fenced code blocks over inline backtick spans over bare lines.
// It returns the parsed statement and the fragment text it came from.
func extractStatement(text string) (tabular.Statement, string, bool) {
	var candidates []string
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, splitLines(m[1])...)
	}
	for _, m := range backtickRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, statementLines(text)...)

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if stmt, err := tabular.Parse(c); err == nil {
			return stmt, c, true
		}
	}
	return nil, "", false
}

// splitLines breaks a fragment into trimmed non-empty lines.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// statementLines returns the lines of text that start with a statement
// keyword, catching bare statements pasted into prose.
func statementLines(text string) []string {
	var out []string
	for _, line := range splitLines(text) {
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "set ") || strings.HasPrefix(lower, "delete ") || strings.HasPrefix(lower, "rename ") {
			out = append(out, line)
		}
	}
	return out
}
