package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formstate/pkg/visibility"
)

// Evaluator is a small, dependency-free rule evaluator for EnabledWhen
// expressions.
//
// Supported syntax:
//   - truthiness: `hasExperience`, `!hasExperience`
//   - equality: `category == "private"`, `count != 3`, `agreed == true`
//   - ordering on numbers: `experienceYears >= 2`
//   - composition with parentheses: `(a == 1 || b) && !c`
//
// Identifiers read from visibility.Context.Values; the `extras.` prefix reads
// from visibility.Context.Extras. Parsed rules are cached.
type Evaluator struct {
	cache sync.Map // rule -> node
}

// New constructs an Evaluator.
func New() *Evaluator { return &Evaluator{} }

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval parses (or reuses) rule and evaluates it against ctx. An empty rule is
// always true.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}
	node, err := e.compile(trimmed)
	if err != nil {
		return false, err
	}
	return node.eval(ctx)
}

// Check parses rule without evaluating it, so schema loaders can reject
// broken expressions early.
func (e *Evaluator) Check(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.compile(strings.TrimSpace(rule))
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	if cached, ok := e.cache.Load(rule); ok {
		return cached.(node), nil
	}
	toks, err := lex(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.toks[p.pos].text)
	}
	e.cache.Store(rule, n)
	return n, nil
}

type kind int

const (
	kIdent kind = iota
	kString
	kNumber
	kBool
	kNull
	kOp
	kAnd
	kOr
	kNot
	kLParen
	kRParen
)

type tok struct {
	kind kind
	text string
}

var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

func lex(input string) ([]tok, error) {
	var out []tok
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
			continue
		case ch == '(':
			out = append(out, tok{kLParen, "("})
			i++
			continue
		case ch == ')':
			out = append(out, tok{kRParen, ")"})
			i++
			continue
		case ch == '"' || ch == '\'':
			end := i + 1
			for end < len(input) && input[end] != ch {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			raw := input[i+1 : end]
			if ch == '"' {
				unquoted, err := strconv.Unquote(`"` + raw + `"`)
				if err != nil {
					return nil, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
				}
				raw = unquoted
			}
			out = append(out, tok{kString, raw})
			i = end + 1
			continue
		}

		if op, ok := matchOp(input[i:]); ok {
			switch op {
			case "&&":
				out = append(out, tok{kAnd, op})
			case "||":
				out = append(out, tok{kOr, op})
			case "!":
				out = append(out, tok{kNot, op})
			case "=", "&", "|":
				return nil, fmt.Errorf("visibility/expr: unexpected %q", op)
			default:
				out = append(out, tok{kOp, op})
			}
			i += len(op)
			continue
		}

		start := i
		for i < len(input) && !strings.ContainsRune(" \t\n\r()!=<>&|\"'", rune(input[i])) {
			i++
		}
		word := input[start:i]
		switch strings.ToLower(word) {
		case "true", "false":
			out = append(out, tok{kBool, strings.ToLower(word)})
		case "null", "nil":
			out = append(out, tok{kNull, "null"})
		default:
			if _, err := strconv.ParseFloat(word, 64); err == nil {
				out = append(out, tok{kNumber, word})
			} else {
				out = append(out, tok{kIdent, word})
			}
		}
	}
	return out, nil
}

func matchOp(rest string) (string, bool) {
	for _, op := range twoCharOps {
		if strings.HasPrefix(rest, op) {
			return op, true
		}
	}
	switch rest[0] {
	case '<', '>', '!', '=', '&', '|':
		return rest[:1], true
	}
	return "", false
}

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) peek(k kind) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == k
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek(kOr) {
		p.pos++
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.peek(kAnd) {
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.peek(kNot) {
		p.pos++
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.pos >= len(p.toks) {
		return nil, errors.New("visibility/expr: unexpected end of expression")
	}
	if p.peek(kLParen) {
		p.pos++
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.peek(kRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		p.pos++
		return inner, nil
	}
	if !p.peek(kIdent) {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", p.toks[p.pos].text)
	}
	ident := p.toks[p.pos].text
	p.pos++

	if !p.peek(kOp) {
		return truthyNode{ident}, nil
	}
	op := p.toks[p.pos].text
	p.pos++
	if p.pos >= len(p.toks) {
		return nil, errors.New("visibility/expr: missing literal")
	}
	lit := p.toks[p.pos]
	p.pos++
	switch lit.kind {
	case kString, kNumber, kBool, kNull:
	case kIdent:
		lit.kind = kString
	default:
		return nil, fmt.Errorf("visibility/expr: expected literal, got %q", lit.text)
	}
	if op != "==" && op != "!=" && lit.kind != kNumber {
		return nil, fmt.Errorf("visibility/expr: operator %q needs a number literal", op)
	}
	return compareNode{ident: ident, op: op, lit: lit}, nil
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	return !ok, err
}

type truthyNode struct{ ident string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.ident)
	return truthy(value), nil
}

type compareNode struct {
	ident string
	op    string
	lit   tok
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.ident)

	var equal bool
	switch n.lit.kind {
	case kNull:
		equal = value == nil || value == ""
	case kBool:
		equal = truthy(value) == (n.lit.text == "true")
	case kString:
		equal = stringify(value) == n.lit.text
	case kNumber:
		want, _ := strconv.ParseFloat(n.lit.text, 64)
		got, ok := number(value)
		switch n.op {
		case "<":
			return ok && got < want, nil
		case "<=":
			return ok && got <= want, nil
		case ">":
			return ok && got > want, nil
		case ">=":
			return ok && got >= want, nil
		}
		equal = ok && got == want
	}
	if n.op == "!=" {
		return !equal, nil
	}
	return equal, nil
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	if strings.HasPrefix(strings.ToLower(key), "extras.") {
		value, ok := ctx.Extras[key[len("extras."):]]
		return value, ok
	}
	value, ok := ctx.Values[key]
	return value, ok
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
		return trimmed != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
