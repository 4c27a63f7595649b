package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStatementFromFence(t *testing.T) {
	text := "Sure! Here is the edit:\n```\nset Status = \"Closed\" where OrderID == 105\n```\nLet me know if that helps."
	stmt, fragment, ok := extractStatement(text)
	require.True(t, ok)
	assert.Equal(t, `set Status = "Closed" where OrderID == 105`, fragment)
	assert.Equal(t, `set Status = Closed where OrderID == 105`, stmt.String())
}

func TestExtractStatementFromLanguageTaggedFence(t *testing.T) {
	text := "```sql\ndelete where Price < 100\n```"
	_, fragment, ok := extractStatement(text)
	require.True(t, ok)
	assert.Equal(t, "delete where Price < 100", fragment)
}

func TestExtractStatementSkipsNonParsingFenceLines(t *testing.T) {
	text := "```\n# apply this\nset Notes = \"pending\"\n```"
	stmt, _, ok := extractStatement(text)
	require.True(t, ok)
	assert.Equal(t, "set Notes = pending", stmt.String())
}

func TestExtractStatementFromBacktickSpan(t *testing.T) {
	text := "You should run `rename Status to State` against the table."
	_, fragment, ok := extractStatement(text)
	require.True(t, ok)
	assert.Equal(t, "rename Status to State", fragment)
}

func TestExtractStatementFromBareLine(t *testing.T) {
	text := "Thought: I need to set the column.\nset Status = \"done\"\nFinal Answer: done"
	_, fragment, ok := extractStatement(text)
	require.True(t, ok)
	assert.Equal(t, `set Status = "done"`, fragment)
}

func TestExtractStatementNoneFound(t *testing.T) {
	_, _, ok := extractStatement("I could not figure out how to help with that.")
	assert.False(t, ok)
}
