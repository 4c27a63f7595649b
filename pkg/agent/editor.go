// Package agent runs natural-language table edits against a local LLM. A
// single edit walks a ladder of recovery tiers, accepting a result only when
// the table's content fingerprint actually changed.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/config"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/tabular"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/textedit"
)

// ErrNoMutation reports that every ladder tier failed to modify the table.
// The on-disk file is untouched when an edit fails with it.
var ErrNoMutation = errors.New("no table mutation was produced")

// Tier names which recovery tier produced a result.
type Tier string

const (
	TierAgent    Tier = "agent"
	TierFragment Tier = "fragment"
	TierRetry    Tier = "retry"
)

// ladderState drives the recovery state machine.
type ladderState int

const (
	stateAgentRun ladderState = iota
	stateExtractFragment
	stateRetryPrompt
	stateSucceeded
	stateFailed
)

// Result describes a successful edit.
type Result struct {
	Tier      Tier
	Statement string
	Rows      int
}

// Editor runs edit sessions.
type Editor struct {
	completer Completer
	model     string
	maxTurns  int
	verbose   bool
	logger    logger.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor's logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithCompleter replaces the LLM client, primarily for tests.
func WithCompleter(c Completer) Option {
	return func(e *Editor) { e.completer = c }
}

// NewEditor builds an Editor from configuration.
func NewEditor(cfg config.Config, opts ...Option) *Editor {
	e := &Editor{
		completer: openaiCompleter{client: newOpenAIClient(cfg)},
		model:     cfg.Model,
		maxTurns:  cfg.MaxTurns,
		verbose:   cfg.Verbose,
		logger:    logger.NopLogger{},
	}
	if e.maxTurns <= 0 {
		e.maxTurns = 1
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// EditTable mutates tbl per the instruction, walking the recovery ladder. On
// ErrNoMutation the table is in whatever state the failed tiers left it;
// callers that care (EditFile) reload from disk.
func (e *Editor) EditTable(ctx context.Context, tbl *tabular.Table, instruction string) (Result, error) {
	before := tbl.Fingerprint()
	var (
		result     Result
		transcript string
	)

	state := stateAgentRun
	for {
		switch state {
		case stateAgentRun:
			outcome, err := e.runAgentLoop(ctx, tbl, instruction)
			transcript = outcome.transcript
			if err != nil {
				logger.Warn(e.logger, "agent run failed", map[string]any{"error": err.Error()})
			}
			if tbl.Fingerprint() != before {
				result = Result{Tier: TierAgent, Statement: outcome.statement, Rows: outcome.rows}
				state = stateSucceeded
				break
			}
			logger.Debug(e.verbose, e.logger, "agent run produced no mutation", map[string]any{"transcript_bytes": len(transcript)})
			state = stateExtractFragment

		case stateExtractFragment:
			stmt, fragment, ok := extractStatement(transcript)
			if !ok {
				logger.Debug(e.verbose, e.logger, "no statement fragment in transcript", nil)
				state = stateRetryPrompt
				break
			}
			rows, err := stmt.Apply(tbl)
			if err != nil {
				logger.Warn(e.logger, "extracted fragment failed", map[string]any{"fragment": fragment, "error": err.Error()})
			}
			if tbl.Fingerprint() != before {
				result = Result{Tier: TierFragment, Statement: stmt.String(), Rows: rows}
				state = stateSucceeded
				break
			}
			state = stateRetryPrompt

		case stateRetryPrompt:
			stmt, err := e.retryStrict(ctx, tbl, instruction)
			if err != nil {
				logger.Warn(e.logger, "strict retry failed", map[string]any{"error": err.Error()})
				state = stateFailed
				break
			}
			rows, err := stmt.Apply(tbl)
			if err != nil {
				logger.Warn(e.logger, "strict retry statement failed", map[string]any{"statement": stmt.String(), "error": err.Error()})
			}
			if tbl.Fingerprint() != before {
				result = Result{Tier: TierRetry, Statement: stmt.String(), Rows: rows}
				state = stateSucceeded
				break
			}
			state = stateFailed

		case stateSucceeded:
			logger.Info(e.logger, "edit succeeded", map[string]any{"tier": string(result.Tier), "statement": result.Statement, "rows": result.Rows})
			return result, nil

		case stateFailed:
			return Result{}, ErrNoMutation
		}
	}
}

// retryStrict re-prompts once with the strict single-statement template and
// parses the whole reply.
func (e *Editor) retryStrict(ctx context.Context, tbl *tabular.Table, instruction string) (tabular.Statement, error) {
	message, err := e.completer.Complete(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildStrictPrompt(tbl, instruction)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("strict retry completion: %w", err)
	}
	reply := strings.TrimSpace(message.Content)
	if reply == "" {
		return nil, errors.New("strict retry returned no content")
	}
	// Models still wrap replies in fences sometimes; accept that too.
	if stmt, _, ok := extractStatement(reply); ok {
		return stmt, nil
	}
	stmt, err := tabular.Parse(reply)
	if err != nil {
		return nil, fmt.Errorf("strict retry reply did not parse: %w", err)
	}
	return stmt, nil
}

// EditFile loads the tabular file at path, runs the edit, and persists the
// result. The on-disk file is only touched when a mutation was detected, and a
// backup of the pre-edit bytes is written before the overwrite.
func (e *Editor) EditFile(ctx context.Context, path, instruction string) (Result, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	tbl, format, err := tabular.Load(path)
	if err != nil {
		return Result{}, err
	}

	result, err := e.EditTable(ctx, tbl, instruction)
	if err != nil {
		return Result{}, err
	}

	if err := textedit.WriteBackup(path, original); err != nil {
		return Result{}, err
	}
	if err := tbl.Save(path, format); err != nil {
		return Result{}, err
	}
	return result, nil
}
