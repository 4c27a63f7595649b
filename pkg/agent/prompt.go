// Prompt assembly for the edit session and the strict retry tier.
package agent

import (
	"fmt"
	"strings"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/tabular"
)

const schemaSampleRows = 5

// grammarHelp is shown to the model verbatim.
const grammarHelp = `Statements:
  set <column> = <value> [where <column> <op> <value>]
  set <column> = <column> (+|-|*|/) <number> [where ...]
  delete where <column> <op> <value>
  rename <column> to <column>
Comparison operators: == != > >= < <= contains
Quote string values: set Status = "Closed" where OrderID == 105`

// buildSystemPrompt constructs the system prompt for the tool-calling tier.
func buildSystemPrompt(tbl *tabular.Table) string {
	var sb strings.Builder
	sb.WriteString("You edit a data table for the user. ")
	sb.WriteString("Call the apply_edit tool with exactly one statement per call. ")
	sb.WriteString("When the table matches the user's request, reply with a short confirmation and stop calling tools.\n\n")
	sb.WriteString(grammarHelp)
	sb.WriteString("\n\nThe table:\n")
	sb.WriteString(tbl.Schema(schemaSampleRows))
	return sb.String()
}

// buildStrictPrompt constructs the retry-tier prompt demanding a bare
// statement with no surrounding prose.
func buildStrictPrompt(tbl *tabular.Table, instruction string) string {
	var sb strings.Builder
	sb.WriteString("Convert the instruction into exactly one edit statement. ")
	sb.WriteString("Reply with the statement only: no explanation, no code fences, no quotes around the whole statement.\n\n")
	sb.WriteString(grammarHelp)
	sb.WriteString("\n\nThe table:\n")
	sb.WriteString(tbl.Schema(schemaSampleRows))
	fmt.Fprintf(&sb, "\n\nInstruction: %s", instruction)
	return sb.String()
}
