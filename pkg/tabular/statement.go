// Edit statement parsing and execution. Statements are the restricted
// evaluation boundary for model-generated edits: only inputs conforming to
// this grammar ever touch a table.
//
//	set <column> = <expr> [ where <cond> ]
//	delete [rows] where <cond>
//	rename [column] <column> to <column>
//
//	expr := literal | <column> | <column> (+|-|*|/) literal
//	cond := <column> (==|!=|>|>=|<|<=|contains) literal
package tabular

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownColumn reports a statement referencing a column the table lacks.
var ErrUnknownColumn = errors.New("unknown column")

// Statement is one parsed table edit.
type Statement interface {
	// Apply executes the statement against t and returns the number of rows
	// it touched.
	Apply(t *Table) (int, error)
	String() string
}

// term is a literal or column reference; quoting forces a literal.
type term struct {
	text   string
	quoted bool
}

// value resolves the term against a row: an unquoted term naming a column
// yields the cell value, anything else is itself.
func (v term) value(t *Table, row []string) string {
	if !v.quoted {
		if idx := t.columnIndex(v.text); idx >= 0 {
			return row[idx]
		}
	}
	return v.text
}

// expr is a term optionally combined with a literal by an arithmetic operator.
type expr struct {
	left  term
	op    string
	right term
}

func (e expr) eval(t *Table, row []string) (string, error) {
	left := e.left.value(t, row)
	if e.op == "" {
		return left, nil
	}
	lf, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil {
		return "", fmt.Errorf("left operand %q is not numeric", left)
	}
	right := e.right.value(t, row)
	rf, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil {
		return "", fmt.Errorf("right operand %q is not numeric", right)
	}
	var out float64
	switch e.op {
	case "+":
		out = lf + rf
	case "-":
		out = lf - rf
	case "*":
		out = lf * rf
	case "/":
		if rf == 0 {
			return "", errors.New("division by zero")
		}
		out = lf / rf
	default:
		return "", fmt.Errorf("unsupported operator %q", e.op)
	}
	return formatNumber(out), nil
}

// formatNumber renders arithmetic results with 12 significant digits so float
// noise (300 * 1.1 = 330.00000000000006) does not leak into cells.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

func (e expr) String() string {
	if e.op == "" {
		return e.left.text
	}
	return fmt.Sprintf("%s %s %s", e.left.text, e.op, e.right.text)
}

// cond is a row predicate.
type cond struct {
	column string
	op     string
	value  term
}

func (c cond) matches(t *Table, row []string) (bool, error) {
	idx := t.columnIndex(c.column)
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrUnknownColumn, c.column)
	}
	cell := row[idx]
	want := c.value.value(t, row)

	if c.op == "contains" {
		return strings.Contains(cell, want), nil
	}

	cf, cellErr := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	wf, wantErr := strconv.ParseFloat(strings.TrimSpace(want), 64)
	numeric := cellErr == nil && wantErr == nil

	switch c.op {
	case "==":
		if numeric {
			return cf == wf, nil
		}
		return cell == want, nil
	case "!=":
		if numeric {
			return cf != wf, nil
		}
		return cell != want, nil
	case ">", ">=", "<", "<=":
		if !numeric {
			switch c.op {
			case ">":
				return cell > want, nil
			case ">=":
				return cell >= want, nil
			case "<":
				return cell < want, nil
			default:
				return cell <= want, nil
			}
		}
		switch c.op {
		case ">":
			return cf > wf, nil
		case ">=":
			return cf >= wf, nil
		case "<":
			return cf < wf, nil
		default:
			return cf <= wf, nil
		}
	default:
		return false, fmt.Errorf("unsupported comparison %q", c.op)
	}
}

func (c cond) String() string {
	return fmt.Sprintf("%s %s %s", c.column, c.op, c.value.text)
}

// SetStatement assigns an expression to a column, optionally filtered.
type SetStatement struct {
	Column string
	value  expr
	where  *cond
}

func (s *SetStatement) Apply(t *Table) (int, error) {
	idx := t.columnIndex(s.Column)
	if idx < 0 {
		// Assigning to an unknown column creates it.
		t.Columns = append(t.Columns, s.Column)
		idx = len(t.Columns) - 1
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], "")
		}
	}
	affected := 0
	for i, row := range t.Rows {
		if s.where != nil {
			ok, err := s.where.matches(t, row)
			if err != nil {
				return affected, err
			}
			if !ok {
				continue
			}
		}
		v, err := s.value.eval(t, row)
		if err != nil {
			return affected, err
		}
		t.Rows[i][idx] = v
		affected++
	}
	return affected, nil
}

func (s *SetStatement) String() string {
	out := fmt.Sprintf("set %s = %s", s.Column, s.value)
	if s.where != nil {
		out += " where " + s.where.String()
	}
	return out
}

// DeleteStatement removes every row matching its condition.
type DeleteStatement struct {
	where cond
}

func (s *DeleteStatement) Apply(t *Table) (int, error) {
	kept := t.Rows[:0]
	removed := 0
	for _, row := range t.Rows {
		ok, err := s.where.matches(t, row)
		if err != nil {
			return 0, err
		}
		if ok {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return removed, nil
}

func (s *DeleteStatement) String() string {
	return "delete where " + s.where.String()
}

// RenameStatement renames a column.
type RenameStatement struct {
	From string
	To   string
}

func (s *RenameStatement) Apply(t *Table) (int, error) {
	idx := t.columnIndex(s.From)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, s.From)
	}
	if other := t.columnIndex(s.To); other >= 0 && other != idx {
		return 0, fmt.Errorf("column already exists: %s", s.To)
	}
	t.Columns[idx] = s.To
	return 1, nil
}

func (s *RenameStatement) String() string {
	return fmt.Sprintf("rename %s to %s", s.From, s.To)
}

// Parse parses one edit statement.
func Parse(input string) (Statement, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New("empty statement")
	}
	p := &parser{tokens: tokens}
	switch strings.ToLower(tokens[0].text) {
	case "set":
		return p.parseSet()
	case "delete":
		return p.parseDelete()
	case "rename":
		return p.parseRename()
	default:
		return nil, fmt.Errorf("unknown statement %q (expected set, delete, or rename)", tokens[0].text)
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) next() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

// expectKeyword consumes the next token, requiring the given keyword.
func (p *parser) expectKeyword(kw string) error {
	tok, ok := p.next()
	if !ok || tok.quoted || !strings.EqualFold(tok.text, kw) {
		return fmt.Errorf("expected %q in statement", kw)
	}
	return nil
}

// skipKeyword consumes the next token when it matches the given keyword.
func (p *parser) skipKeyword(kw string) {
	if tok, ok := p.peek(); ok && !tok.quoted && strings.EqualFold(tok.text, kw) {
		p.pos++
	}
}

func (p *parser) parseSet() (Statement, error) {
	p.pos = 1 // past "set"
	col, ok := p.next()
	if !ok {
		return nil, errors.New("set: missing column name")
	}
	if err := p.expectKeyword("="); err != nil {
		return nil, fmt.Errorf("set: %w", err)
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, fmt.Errorf("set: %w", err)
	}
	stmt := &SetStatement{Column: col.text, value: value}
	if tok, ok := p.peek(); ok {
		if !strings.EqualFold(tok.text, "where") {
			return nil, fmt.Errorf("set: unexpected token %q", tok.text)
		}
		p.pos++
		where, err := p.parseCond()
		if err != nil {
			return nil, fmt.Errorf("set: %w", err)
		}
		stmt.where = &where
	}
	return stmt, nil
}

func (p *parser) parseDelete() (Statement, error) {
	p.pos = 1 // past "delete"
	p.skipKeyword("rows")
	if err := p.expectKeyword("where"); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	where, err := p.parseCond()
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if _, ok := p.peek(); ok {
		return nil, errors.New("delete: trailing tokens after condition")
	}
	return &DeleteStatement{where: where}, nil
}

func (p *parser) parseRename() (Statement, error) {
	p.pos = 1 // past "rename"
	p.skipKeyword("column")
	from, ok := p.next()
	if !ok {
		return nil, errors.New("rename: missing column name")
	}
	if err := p.expectKeyword("to"); err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}
	to, ok := p.next()
	if !ok {
		return nil, errors.New("rename: missing new column name")
	}
	if _, ok := p.peek(); ok {
		return nil, errors.New("rename: trailing tokens")
	}
	return &RenameStatement{From: from.text, To: to.text}, nil
}

func (p *parser) parseExpr() (expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return expr{}, err
	}
	tok, ok := p.peek()
	if !ok || tok.quoted || !isArithmeticOp(tok.text) {
		return expr{left: left}, nil
	}
	p.pos++
	right, err := p.parseTerm()
	if err != nil {
		return expr{}, err
	}
	return expr{left: left, op: tok.text, right: right}, nil
}

func (p *parser) parseCond() (cond, error) {
	col, ok := p.next()
	if !ok {
		return cond{}, errors.New("missing condition column")
	}
	opTok, ok := p.next()
	if !ok {
		return cond{}, errors.New("missing comparison operator")
	}
	op := strings.ToLower(opTok.text)
	if op == "=" {
		op = "=="
	}
	if !isComparisonOp(op) {
		return cond{}, fmt.Errorf("unsupported comparison %q", opTok.text)
	}
	val, err := p.parseTerm()
	if err != nil {
		return cond{}, err
	}
	return cond{column: col.text, op: op, value: val}, nil
}

// parseTerm consumes one value, merging a unary minus into a number.
func (p *parser) parseTerm() (term, error) {
	tok, ok := p.next()
	if !ok {
		return term{}, errors.New("missing value")
	}
	if !tok.quoted && tok.text == "-" {
		num, ok := p.next()
		if !ok || num.quoted {
			return term{}, errors.New("dangling minus sign")
		}
		if _, err := strconv.ParseFloat(num.text, 64); err != nil {
			return term{}, fmt.Errorf("expected number after minus, got %q", num.text)
		}
		return term{text: "-" + num.text}, nil
	}
	return tok, nil
}

func isArithmeticOp(s string) bool {
	switch s {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

func isComparisonOp(s string) bool {
	switch s {
	case "==", "!=", ">", ">=", "<", "<=", "contains":
		return true
	}
	return false
}
