// Chat completion plumbing and the apply_edit tool.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/config"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/tabular"
)

// Completer sends one chat completion request and returns the first choice.
type Completer interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletionMessage, error)
}

type openaiCompleter struct {
	client openai.Client
}

func (c openaiCompleter) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletionMessage, error) {
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("empty completion choices")
	}
	return completion.Choices[0].Message, nil
}

// newOpenAIClient builds a client pointed at the configured endpoint.
func newOpenAIClient(cfg config.Config) openai.Client {
	opts := []option.RequestOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return openai.NewClient(opts...)
}

const applyEditToolName = "apply_edit"

// applyEditToolParam is the single tool exposed to the model.
func applyEditToolParam() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        applyEditToolName,
			Description: openai.String("Apply one edit statement to the table"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"statement": map[string]any{
						"type":        "string",
						"description": "One statement: set/delete/rename",
					},
				},
				"required": []string{"statement"},
			},
		},
	}
}

// toolResponse is the wrapper sent back to the model after tool execution.
type toolResponse struct {
	OK   bool        `json:"ok"`
	Tool string      `json:"tool,omitempty"`
	Data interface{} `json:"data,omitempty"`
	Err  string      `json:"error,omitempty"`
}

// marshalToolResponse encodes a tool response as JSON.
func marshalToolResponse(tool string, data interface{}, err error) string {
	resp := toolResponse{
		OK:   err == nil,
		Tool: tool,
		Data: data,
	}
	if err != nil {
		resp.Err = err.Error()
	}
	payload, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		return fmt.Sprintf(`{"ok":false,"error":%q}`, marshalErr.Error())
	}
	return string(payload)
}

// agentRunOutcome is what a tool-calling loop produced: the assistant's raw
// text (for fragment extraction) and the last statement that executed.
type agentRunOutcome struct {
	transcript string
	statement  string
	rows       int
	executed   bool
}

// runAgentLoop runs the tool-calling conversation against the table for up to
// maxTurns turns. Statement failures are reported back to the model so it can
// correct itself; transport failures end the loop with whatever transcript has
// accumulated.
func (e *Editor) runAgentLoop(ctx context.Context, tbl *tabular.Table, instruction string) (agentRunOutcome, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(buildSystemPrompt(tbl)),
		openai.UserMessage(instruction),
	}

	var outcome agentRunOutcome
	var texts []string

	for turn := 0; turn < e.maxTurns; turn++ {
		logger.Debug(e.verbose, e.logger, "agent turn", map[string]any{"turn": turn + 1, "messages": len(messages)})
		message, err := e.completer.Complete(ctx, openai.ChatCompletionNewParams{
			Model:    e.model,
			Messages: messages,
			Tools:    []openai.ChatCompletionToolParam{applyEditToolParam()},
		})
		if err != nil {
			outcome.transcript = strings.Join(texts, "\n")
			return outcome, fmt.Errorf("chat completion: %w", err)
		}
		if strings.TrimSpace(message.Content) != "" {
			texts = append(texts, message.Content)
		}

		if len(message.ToolCalls) == 0 {
			logger.Debug(e.verbose, e.logger, "agent loop done", map[string]any{"turns": turn + 1})
			break
		}

		messages = append(messages, message.ToParam())
		for _, call := range message.ToolCalls {
			output := e.executeToolCall(tbl, call, &outcome)
			messages = append(messages, openai.ToolMessage(output, call.ID))
		}
	}

	outcome.transcript = strings.Join(texts, "\n")
	return outcome, nil
}

// executeToolCall runs one apply_edit call against the table.
func (e *Editor) executeToolCall(tbl *tabular.Table, call openai.ChatCompletionMessageToolCall, outcome *agentRunOutcome) string {
	if call.Function.Name != applyEditToolName {
		return marshalToolResponse(call.Function.Name, nil, fmt.Errorf("unknown tool: %s", call.Function.Name))
	}
	var args struct {
		Statement string `json:"statement"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		logger.Debug(e.verbose, e.logger, "apply_edit bad arguments", map[string]any{"error": err.Error()})
		return marshalToolResponse(applyEditToolName, nil, err)
	}
	logger.Debug(e.verbose, e.logger, "apply_edit", map[string]any{"statement": args.Statement})

	stmt, err := tabular.Parse(args.Statement)
	if err != nil {
		return marshalToolResponse(applyEditToolName, nil, err)
	}
	rows, err := stmt.Apply(tbl)
	if err != nil {
		return marshalToolResponse(applyEditToolName, nil, err)
	}

	outcome.statement = stmt.String()
	outcome.rows = rows
	outcome.executed = true
	return marshalToolResponse(applyEditToolName, struct {
		Statement string `json:"statement"`
		Rows      int    `json:"rows"`
	}{Statement: stmt.String(), Rows: rows}, nil)
}
