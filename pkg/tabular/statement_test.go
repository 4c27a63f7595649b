package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyStatement(t *testing.T, tbl *Table, input string) int {
	t.Helper()
	stmt, err := Parse(input)
	require.NoError(t, err, input)
	affected, err := stmt.Apply(tbl)
	require.NoError(t, err, input)
	return affected
}

func TestSetWholeColumn(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `set Status = "Closed"`)
	assert.Equal(t, 5, affected)
	for _, row := range tbl.Rows {
		assert.Equal(t, "Closed", row[3])
	}
}

func TestSetWithWhere(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `set Status = "Closed" where OrderID == 105`)
	assert.Equal(t, 1, affected)
	assert.Equal(t, "Closed", tbl.Rows[4][3])
	assert.Equal(t, "Shipped", tbl.Rows[0][3])
}

func TestSetCreatesMissingColumn(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `set Notes = "pending"`)
	assert.Equal(t, 5, affected)
	assert.Equal(t, []string{"OrderID", "Product", "Price", "Status", "Notes"}, tbl.Columns)
	assert.Equal(t, "pending", tbl.Rows[2][4])
}

func TestSetArithmetic(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `set Price = Price * 1.1 where Status == "Pending"`)
	assert.Equal(t, 2, affected)
	assert.Equal(t, "330", tbl.Rows[1][2])
	assert.Equal(t, "82.5", tbl.Rows[3][2])
	assert.Equal(t, "1200", tbl.Rows[0][2])
}

func TestSetColumnCopy(t *testing.T) {
	tbl := SampleTable()
	applyStatement(t, tbl, `set Original = Price`)
	assert.Equal(t, "1200", tbl.Rows[0][4])
}

func TestDeleteWhere(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `delete where Price < 100`)
	assert.Equal(t, 3, affected)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Laptop", tbl.Rows[0][1])
	assert.Equal(t, "Monitor", tbl.Rows[1][1])
}

func TestDeleteRowsKeyword(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `delete rows where Status contains "Ship"`)
	assert.Equal(t, 2, affected)
	assert.Len(t, tbl.Rows, 3)
}

func TestRenameColumn(t *testing.T) {
	tbl := SampleTable()
	applyStatement(t, tbl, `rename column Status to State`)
	assert.Equal(t, []string{"OrderID", "Product", "Price", "State"}, tbl.Columns)
}

func TestRenameToExistingColumnFails(t *testing.T) {
	stmt, err := Parse(`rename Status to Price`)
	require.NoError(t, err)
	_, err = stmt.Apply(SampleTable())
	assert.Error(t, err)
}

func TestCaseInsensitiveColumnsAndKeywords(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `SET status = "done" WHERE orderid != 101`)
	assert.Equal(t, 4, affected)
	assert.Equal(t, "Shipped", tbl.Rows[0][3])
	assert.Equal(t, "done", tbl.Rows[1][3])
}

func TestSingleEqualsInWhere(t *testing.T) {
	tbl := SampleTable()
	affected := applyStatement(t, tbl, `set Status = "Closed" where Product = 'Mouse'`)
	assert.Equal(t, 1, affected)
	assert.Equal(t, "Closed", tbl.Rows[2][3])
}

func TestNegativeNumbers(t *testing.T) {
	tbl := SampleTable()
	applyStatement(t, tbl, `set Price = Price + -25 where OrderID == 103`)
	assert.Equal(t, "0", tbl.Rows[2][2])
}

func TestQuotedValueIsNeverAColumnReference(t *testing.T) {
	tbl := SampleTable()
	applyStatement(t, tbl, `set Product = "Price" where OrderID == 101`)
	assert.Equal(t, "Price", tbl.Rows[0][1])
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"frobnicate the table",
		"set = 5",
		"set Price 5",
		"delete Price == 5",
		"delete where Price",
		"rename Status",
		`set Status = "unterminated`,
		"set Price = Price % 2",
	}
	for _, input := range cases {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestApplyErrors(t *testing.T) {
	t.Run("unknown condition column", func(t *testing.T) {
		stmt, err := Parse(`delete where Ghost == 1`)
		require.NoError(t, err)
		_, err = stmt.Apply(SampleTable())
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("non numeric arithmetic", func(t *testing.T) {
		stmt, err := Parse(`set Price = Product * 2`)
		require.NoError(t, err)
		_, err = stmt.Apply(SampleTable())
		assert.Error(t, err)
	})

	t.Run("division by zero", func(t *testing.T) {
		stmt, err := Parse(`set Price = Price / 0`)
		require.NoError(t, err)
		_, err = stmt.Apply(SampleTable())
		assert.Error(t, err)
	})
}
