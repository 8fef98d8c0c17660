package condition

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/roach88/motionchart/internal/trinary"
)

// Resolver maps a node name appearing in condition text to its NodeID.
type Resolver func(name string) (NodeID, error)

// SyntaxError reports a malformed condition string.
type SyntaxError struct {
	Source  string // Full condition text
	Offset  int    // Byte offset of the offending token
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("condition %q: offset %d: %s", e.Source, e.Offset, e.Message)
}

// Parse parses condition text into an expression.
//
// Grammar (keywords are case-insensitive):
//
//	expr  := and { ("or" | "||") and }
//	and   := unary { ("and" | "&&") unary }
//	unary := ("not" | "!") unary | atom
//	atom  := "true" | "false" | "unknown" | NAME | "(" expr ")"
//
// Every NAME is passed to resolve; a resolver error aborts parsing and is
// returned wrapped.
func Parse(src string, resolve Resolver) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, resolve: resolve}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return expr, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNamePart(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || strings.ContainsRune("./:-", r)
}

func tokenize(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	offsets := make([]int, 0, len(runes)+1)
	for i := range src {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(src))

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", offset: offsets[i]})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", offset: offsets[i]})
			i++
		case r == '!':
			toks = append(toks, token{kind: tokNot, text: "!", offset: offsets[i]})
			i++
		case r == '&' || r == '|':
			if i+1 >= len(runes) || runes[i+1] != r {
				return nil, &SyntaxError{Source: src, Offset: offsets[i], Message: fmt.Sprintf("expected %q", string([]rune{r, r}))}
			}
			kind := tokAnd
			if r == '|' {
				kind = tokOr
			}
			toks = append(toks, token{kind: kind, text: string([]rune{r, r}), offset: offsets[i]})
			i += 2
		case isNameStart(r):
			start := i
			for i < len(runes) && isNamePart(runes[i]) {
				i++
			}
			text := string(runes[start:i])
			kind := tokName
			switch strings.ToLower(text) {
			case "and":
				kind = tokAnd
			case "or":
				kind = tokOr
			case "not":
				kind = tokNot
			}
			toks = append(toks, token{kind: kind, text: text, offset: offsets[start]})
		default:
			return nil, &SyntaxError{Source: src, Offset: offsets[i], Message: fmt.Sprintf("unexpected character %q", r)}
		}
	}

	toks = append(toks, token{kind: tokEOF, offset: len(src)})
	return toks, nil
}

type parser struct {
	src     string
	toks    []token
	pos     int
	resolve Resolver
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Offset: tok.offset, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []Expr{first}
	for p.peek().kind == tokOr {
		p.next()
		operand, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return Or{Operands: operands}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	operands := []Expr{first}
	for p.peek().kind == tokAnd {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return And{Operands: operands}, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected \")\"")
		}
		return inner, nil
	case tokName:
		if v, err := trinary.Parse(tok.text); err == nil {
			return Const{Value: v}, nil
		}
		if p.resolve == nil {
			return nil, p.errorf(tok, "no resolver for node %q", tok.text)
		}
		id, err := p.resolve(tok.text)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", p.src, err)
		}
		return Ref{Node: id}, nil
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of condition")
	default:
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
}
