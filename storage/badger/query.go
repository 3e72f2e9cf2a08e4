package badger

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dgraph-io/badger/v4"
	"github.com/podgraph/podgraph/core"
	"github.com/podgraph/podgraph/storage"
)

// The statement language is a small, openCypher-flavored subset sufficient
// for the statements the completion service is prompted to generate:
//
//	MATCH (a:Person)-[r:APPEARED_ON]->(b:Episode)
//	WHERE toLower(a.name) CONTAINS toLower($guest) AND b.publish_date >= '2024-01-01'
//	RETURN a.name AS guest, b.name AS episode, r.timestamp
//	ORDER BY b.publish_date DESC
//	LIMIT 10
//
// One node pattern or one directed edge pattern, an optional WHERE with
// AND-joined conditions, a RETURN projection, optional ORDER BY and LIMIT.
// Conditions support CONTAINS (with toLower folding), =, >= and <=.
// Parameters are referenced as $name and bound at execution time.

// ExecuteStatement parses and executes a statement against the graph.
func (r *GraphRepository) ExecuteStatement(ctx context.Context, statementText string, params map[string]any) ([]map[string]any, error) {
	stmt, err := parseStatement(statementText)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		rows, err = stmt.execute(tx, params)
		return err
	}, false)
	return rows, err
}

// --- statement model ---

type nodePattern struct {
	variable string
	label    string
}

type relPattern struct {
	variable string
	relType  string
}

type condition struct {
	variable string
	prop     string
	op       string // "CONTAINS", "=", ">=", "<="
	value    operand
	fold     bool // toLower applied to both sides
}

type operand struct {
	literal string
	param   string // non-empty when the value is a $param reference
}

type returnItem struct {
	variable string
	prop     string // empty for a bare variable
	alias    string
}

type orderClause struct {
	variable string
	prop     string
	desc     bool
}

type statement struct {
	left    nodePattern
	rel     *relPattern
	right   *nodePattern
	where   []condition
	returns []returnItem
	orderBy *orderClause
	limit   int // 0 means no limit
}

// --- tokenizer ---

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokParam
	tokSymbol
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(text string) ([]token, error) {
	var tokens []token
	runes := []rune(text)
	i := 0
	n := len(runes)

	for i < n {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < n && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{tokIdent, string(runes[start:i])})
		case unicode.IsDigit(c):
			start := i
			for i < n && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, token{tokNumber, string(runes[start:i])})
		case c == '\'' || c == '"':
			quote := c
			i++
			start := i
			for i < n && runes[i] != quote {
				i++
			}
			if i >= n {
				return nil, fmt.Errorf("%w: unterminated string literal", storage.ErrInvalidStatement)
			}
			tokens = append(tokens, token{tokString, string(runes[start:i])})
			i++
		case c == '$':
			i++
			start := i
			for i < n && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("%w: empty parameter name", storage.ErrInvalidStatement)
			}
			tokens = append(tokens, token{tokParam, string(runes[start:i])})
		case (c == '>' || c == '<') && i+1 < n && runes[i+1] == '=':
			tokens = append(tokens, token{tokSymbol, string(c) + "="})
			i += 2
		default:
			tokens = append(tokens, token{tokSymbol, string(c)})
			i++
		}
	}
	return tokens, nil
}

// --- parser ---

type parser struct {
	tokens []token
	pos    int
}

func parseStatement(text string) (*statement, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	stmt := &statement{}
	if err := p.expectKeyword("MATCH"); err != nil {
		return nil, err
	}

	left, err := p.parseNodePattern()
	if err != nil {
		return nil, err
	}
	stmt.left = left

	if p.acceptSymbol("-") {
		rel, right, err := p.parseEdgePattern()
		if err != nil {
			return nil, err
		}
		stmt.rel = rel
		stmt.right = right
	}

	if p.acceptKeyword("WHERE") {
		for {
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			stmt.where = append(stmt.where, cond)
			if !p.acceptKeyword("AND") {
				break
			}
		}
	}

	if err := p.expectKeyword("RETURN"); err != nil {
		return nil, err
	}
	for {
		item, err := p.parseReturnItem()
		if err != nil {
			return nil, err
		}
		stmt.returns = append(stmt.returns, item)
		if !p.acceptSymbol(",") {
			break
		}
	}

	if p.acceptKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		variable, prop, err := p.parsePropertyRef()
		if err != nil {
			return nil, err
		}
		order := &orderClause{variable: variable, prop: prop}
		if p.acceptKeyword("DESC") {
			order.desc = true
		} else {
			p.acceptKeyword("ASC")
		}
		stmt.orderBy = order
	}

	if p.acceptKeyword("LIMIT") {
		tok, ok := p.next()
		if !ok || tok.kind != tokNumber {
			return nil, fmt.Errorf("%w: LIMIT requires a number", storage.ErrInvalidStatement)
		}
		limit, err := strconv.Atoi(tok.text)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("%w: invalid LIMIT %q", storage.ErrInvalidStatement, tok.text)
		}
		stmt.limit = limit
	}

	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: trailing input after statement", storage.ErrInvalidStatement)
	}
	return stmt, stmt.validate()
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) acceptKeyword(keyword string) bool {
	tok, ok := p.peek()
	if ok && tok.kind == tokIdent && strings.EqualFold(tok.text, keyword) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectKeyword(keyword string) error {
	if !p.acceptKeyword(keyword) {
		return fmt.Errorf("%w: expected %s", storage.ErrInvalidStatement, keyword)
	}
	return nil
}

func (p *parser) acceptSymbol(symbol string) bool {
	tok, ok := p.peek()
	if ok && tok.kind == tokSymbol && tok.text == symbol {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectSymbol(symbol string) error {
	if !p.acceptSymbol(symbol) {
		return fmt.Errorf("%w: expected %q", storage.ErrInvalidStatement, symbol)
	}
	return nil
}

func (p *parser) expectIdent() (string, error) {
	tok, ok := p.next()
	if !ok || tok.kind != tokIdent {
		return "", fmt.Errorf("%w: expected identifier", storage.ErrInvalidStatement)
	}
	return tok.text, nil
}

// parseNodePattern parses "(variable:Label)". The variable may be omitted.
func (p *parser) parseNodePattern() (nodePattern, error) {
	var node nodePattern
	if err := p.expectSymbol("("); err != nil {
		return node, err
	}
	if tok, ok := p.peek(); ok && tok.kind == tokIdent {
		node.variable = tok.text
		p.pos++
	}
	if err := p.expectSymbol(":"); err != nil {
		return node, err
	}
	label, err := p.expectIdent()
	if err != nil {
		return node, err
	}
	node.label = label
	return node, p.expectSymbol(")")
}

// parseEdgePattern parses "[variable:TYPE]->(node)" after the leading "-".
func (p *parser) parseEdgePattern() (*relPattern, *nodePattern, error) {
	if err := p.expectSymbol("["); err != nil {
		return nil, nil, err
	}
	rel := &relPattern{}
	if tok, ok := p.peek(); ok && tok.kind == tokIdent {
		rel.variable = tok.text
		p.pos++
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, nil, err
	}
	relType, err := p.expectIdent()
	if err != nil {
		return nil, nil, err
	}
	rel.relType = relType
	if err := p.expectSymbol("]"); err != nil {
		return nil, nil, err
	}
	if err := p.expectSymbol("-"); err != nil {
		return nil, nil, err
	}
	if err := p.expectSymbol(">"); err != nil {
		return nil, nil, err
	}
	right, err := p.parseNodePattern()
	if err != nil {
		return nil, nil, err
	}
	return rel, &right, nil
}

// parsePropertyRef parses "variable.prop".
func (p *parser) parsePropertyRef() (string, string, error) {
	variable, err := p.expectIdent()
	if err != nil {
		return "", "", err
	}
	if err := p.expectSymbol("."); err != nil {
		return "", "", err
	}
	prop, err := p.expectIdent()
	if err != nil {
		return "", "", err
	}
	return variable, prop, nil
}

// parseCondition parses one WHERE condition.
func (p *parser) parseCondition() (condition, error) {
	var cond condition

	if p.acceptKeyword("toLower") {
		cond.fold = true
		if err := p.expectSymbol("("); err != nil {
			return cond, err
		}
		variable, prop, err := p.parsePropertyRef()
		if err != nil {
			return cond, err
		}
		cond.variable = variable
		cond.prop = prop
		if err := p.expectSymbol(")"); err != nil {
			return cond, err
		}
	} else {
		variable, prop, err := p.parsePropertyRef()
		if err != nil {
			return cond, err
		}
		cond.variable = variable
		cond.prop = prop
	}

	tok, ok := p.next()
	if !ok {
		return cond, fmt.Errorf("%w: expected operator", storage.ErrInvalidStatement)
	}
	switch {
	case tok.kind == tokIdent && strings.EqualFold(tok.text, "CONTAINS"):
		cond.op = "CONTAINS"
	case tok.kind == tokSymbol && (tok.text == "=" || tok.text == ">=" || tok.text == "<="):
		cond.op = tok.text
	default:
		return cond, fmt.Errorf("%w: unsupported operator %q", storage.ErrInvalidStatement, tok.text)
	}

	value, fold, err := p.parseOperand()
	if err != nil {
		return cond, err
	}
	cond.value = value
	cond.fold = cond.fold || fold
	return cond, nil
}

// parseOperand parses a string literal, number or $param, optionally wrapped
// in toLower(...).
func (p *parser) parseOperand() (operand, bool, error) {
	if p.acceptKeyword("toLower") {
		if err := p.expectSymbol("("); err != nil {
			return operand{}, false, err
		}
		value, _, err := p.parseOperand()
		if err != nil {
			return operand{}, false, err
		}
		return value, true, p.expectSymbol(")")
	}

	tok, ok := p.next()
	if !ok {
		return operand{}, false, fmt.Errorf("%w: expected value", storage.ErrInvalidStatement)
	}
	switch tok.kind {
	case tokString, tokNumber:
		return operand{literal: tok.text}, false, nil
	case tokParam:
		return operand{param: tok.text}, false, nil
	default:
		return operand{}, false, fmt.Errorf("%w: expected value, got %q", storage.ErrInvalidStatement, tok.text)
	}
}

// parseReturnItem parses "variable[.prop] [AS alias]".
func (p *parser) parseReturnItem() (returnItem, error) {
	var item returnItem
	variable, err := p.expectIdent()
	if err != nil {
		return item, err
	}
	item.variable = variable
	if p.acceptSymbol(".") {
		prop, err := p.expectIdent()
		if err != nil {
			return item, err
		}
		item.prop = prop
	}
	if p.acceptKeyword("AS") {
		alias, err := p.expectIdent()
		if err != nil {
			return item, err
		}
		item.alias = alias
	} else if item.prop != "" {
		item.alias = item.variable + "." + item.prop
	} else {
		item.alias = item.variable
	}
	return item, nil
}

// validate checks labels, relationship types and variable references.
func (s *statement) validate() error {
	if !slices.Contains(core.EntityTypes, s.left.label) {
		return fmt.Errorf("%w: unknown label %q", storage.ErrInvalidStatement, s.left.label)
	}
	if s.rel != nil {
		if !slices.Contains(core.RelationshipTypes, s.rel.relType) {
			return fmt.Errorf("%w: unknown relationship type %q", storage.ErrInvalidStatement, s.rel.relType)
		}
		if !slices.Contains(core.EntityTypes, s.right.label) {
			return fmt.Errorf("%w: unknown label %q", storage.ErrInvalidStatement, s.right.label)
		}
	}

	known := func(variable string) bool {
		if variable == s.left.variable && variable != "" {
			return true
		}
		if s.rel != nil {
			if variable == s.rel.variable && variable != "" {
				return true
			}
			if variable == s.right.variable && variable != "" {
				return true
			}
		}
		return false
	}

	for _, cond := range s.where {
		if !known(cond.variable) {
			return fmt.Errorf("%w: unbound variable %q", storage.ErrInvalidStatement, cond.variable)
		}
	}
	for _, item := range s.returns {
		if !known(item.variable) {
			return fmt.Errorf("%w: unbound variable %q", storage.ErrInvalidStatement, item.variable)
		}
	}
	if s.orderBy != nil && !known(s.orderBy.variable) {
		return fmt.Errorf("%w: unbound variable %q", storage.ErrInvalidStatement, s.orderBy.variable)
	}
	return nil
}

// --- execution ---

// bound is one variable binding in a candidate row.
type bound struct {
	entity *core.Entity
	rel    *core.Relationship
}

type binding map[string]bound

func (s *statement) execute(tx *badger.Txn, params map[string]any) ([]map[string]any, error) {
	bindings, err := s.enumerate(tx)
	if err != nil {
		return nil, err
	}

	var kept []binding
	for _, b := range bindings {
		match := true
		for _, cond := range s.where {
			ok, err := cond.matches(b, params)
			if err != nil {
				return nil, err
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, b)
		}
	}

	if s.orderBy != nil {
		slices.SortStableFunc(kept, func(a, b binding) int {
			av := propValue(a[s.orderBy.variable], s.orderBy.prop)
			bv := propValue(b[s.orderBy.variable], s.orderBy.prop)
			cmp := compareValues(av, bv)
			if s.orderBy.desc {
				return -cmp
			}
			return cmp
		})
	}

	if s.limit > 0 && len(kept) > s.limit {
		kept = kept[:s.limit]
	}

	rows := make([]map[string]any, 0, len(kept))
	for _, b := range kept {
		row := make(map[string]any, len(s.returns))
		for _, item := range s.returns {
			row[item.alias] = propValue(b[item.variable], item.prop)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// enumerate produces all candidate bindings for the MATCH pattern.
func (s *statement) enumerate(tx *badger.Txn) ([]binding, error) {
	lefts, err := entitiesOfType(tx, s.left.label)
	if err != nil {
		return nil, err
	}

	var bindings []binding
	for _, left := range lefts {
		if s.rel == nil {
			b := binding{}
			if s.left.variable != "" {
				b[s.left.variable] = bound{entity: left}
			}
			bindings = append(bindings, b)
			continue
		}

		rels, err := outgoingRels(tx, s.rel.relType, left.Id)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			right, err := readEntity(tx, makeEntityKey(rel.ToId))
			if err != nil {
				return nil, err
			}
			if right == nil || right.Type != s.right.label {
				continue
			}
			b := binding{}
			if s.left.variable != "" {
				b[s.left.variable] = bound{entity: left}
			}
			if s.rel.variable != "" {
				b[s.rel.variable] = bound{rel: rel}
			}
			if s.right.variable != "" {
				b[s.right.variable] = bound{entity: right}
			}
			bindings = append(bindings, b)
		}
	}
	return bindings, nil
}

// entitiesOfType scans the type index for all entities of one label.
func entitiesOfType(tx *badger.Txn, label string) ([]*core.Entity, error) {
	prefix := makePartialEntityTypeKey(label)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var results []*core.Entity
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		entity, err := readEntity(tx, makeEntityKey(idFromIndexKey(iter.Item().Key())))
		if err != nil {
			return nil, err
		}
		if entity != nil {
			results = append(results, entity)
		}
	}
	return results, nil
}

// matches evaluates the condition against a binding.
func (c *condition) matches(b binding, params map[string]any) (bool, error) {
	left := propValue(b[c.variable], c.prop)
	right, err := c.value.resolve(params)
	if err != nil {
		return false, err
	}

	if c.fold {
		left = strings.ToLower(left)
		right = strings.ToLower(right)
	}

	switch c.op {
	case "CONTAINS":
		return strings.Contains(left, right), nil
	case "=":
		return compareValues(left, right) == 0, nil
	case ">=":
		return compareValues(left, right) >= 0, nil
	case "<=":
		return compareValues(left, right) <= 0, nil
	default:
		return false, fmt.Errorf("%w: unsupported operator %q", storage.ErrInvalidStatement, c.op)
	}
}

// resolve returns the operand's string value, looking up $params as needed.
func (o *operand) resolve(params map[string]any) (string, error) {
	if o.param == "" {
		return o.literal, nil
	}
	value, ok := params[o.param]
	if !ok {
		return "", fmt.Errorf("%w: $%s", storage.ErrMissingParameter, o.param)
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// propValue resolves a property on a bound variable. Entities expose "name"
// and "type" plus their Props; relationships expose "type" plus their Props.
// A bare variable resolves to the entity name or relationship type.
func propValue(b bound, prop string) string {
	switch {
	case b.entity != nil:
		switch prop {
		case "", "name":
			return b.entity.Name
		case "type":
			return b.entity.Type
		default:
			return b.entity.Props[prop]
		}
	case b.rel != nil:
		if prop == "" || prop == "type" {
			return b.rel.Type
		}
		return b.rel.Props[prop]
	default:
		return ""
	}
}

// compareValues compares numerically when both sides parse as numbers,
// lexically otherwise. Lexical comparison orders ISO dates correctly.
func compareValues(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
