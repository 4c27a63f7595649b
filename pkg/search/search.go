// Package search implements recursive fuzzy file and folder search across a
// configured set of root directories.
package search

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
)

// Result is one ranked match. Higher scores are better.
type Result struct {
	Path  string
	Score int
	IsDir bool
}

// Options controls a search.
type Options struct {
	// Roots are the directories to walk. An empty slice yields no results.
	Roots []string
	// Extensions, when non-empty, restricts results to files with one of the
	// given extensions (e.g. ".txt"). When empty, directories match too.
	Extensions []string
	// Limit caps the number of returned results. Zero or negative means 10.
	Limit int

	Verbose bool
	Logger  logger.Logger
}

const defaultLimit = 10

// Find walks every root and returns the best matches for query, ordered by
// descending score. Unreadable directories are skipped; a search that matches
// nothing returns an empty slice and a nil error.
func Find(query string, opts Options) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}

	var results []Result
	for _, root := range opts.Roots {
		logger.Debug(opts.Verbose, opts.Logger, "search root", map[string]any{"root": root, "query": query})
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Permission errors and racy removals are not fatal.
				logger.Debug(opts.Verbose, opts.Logger, "search skip", map[string]any{"path": path, "error": err.Error()})
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path == root {
					return nil
				}
				if len(exts) == 0 {
					if score, ok := scoreName(query, d.Name()); ok {
						results = append(results, Result{Path: path, Score: score, IsDir: true})
					}
				}
				return nil
			}
			if len(exts) > 0 {
				if _, ok := exts[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
					return nil
				}
			}
			if score, ok := scoreName(query, d.Name()); ok {
				results = append(results, Result{Path: path, Score: score})
			}
			return nil
		})
		if err != nil {
			// WalkDir only returns errors surfaced by the callback; keep the
			// whole search non-fatal regardless.
			logger.Warn(opts.Logger, "search root failed", map[string]any{"root": root, "error": err.Error()})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

// FindDirs is Find restricted to directories, used by find-and-push.
func FindDirs(query string, opts Options) ([]Result, error) {
	opts.Extensions = nil
	all, err := Find(query, opts)
	if err != nil {
		return nil, err
	}
	dirs := make([]Result, 0, len(all))
	for _, r := range all {
		if r.IsDir {
			dirs = append(dirs, r)
		}
	}
	return dirs, nil
}

// scoreName ranks a candidate base name against the query. Exact folds beat
// substring matches, which beat plain fuzzy subsequence matches; within a band
// the smaller Levenshtein-style distance wins.
func scoreName(query, name string) (int, bool) {
	rank := fuzzy.RankMatchNormalizedFold(query, name)
	if rank < 0 {
		return 0, false
	}
	score := -rank
	if strings.EqualFold(query, name) || strings.EqualFold(query, trimExt(name)) {
		score += 2000
	} else if strings.Contains(strings.ToLower(name), strings.ToLower(query)) {
		score += 1000
	}
	return score, true
}

// trimExt drops the final extension so "report" matches "report.xlsx" exactly.
func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
