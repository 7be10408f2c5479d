package query

import (
	"strconv"
	"strings"
)

type opKind uint8

const (
	opAnd opKind = iota + 1
	opOr
	opNot
	opLParen
)

// step is one element of the builder output: either a term or an operator,
// already in postfix order.
type step struct {
	term *Term
	op   opKind
}

// builder folds tokens into postfix steps. ops is the operator queue with
// the most recently seen operator at the end.
type builder struct {
	ops         []opKind
	groupNegate []bool
	parenPos    []int
	out         []step

	term       *Term
	fuzz       float64
	boost      float64
	modText    string
	parenDepth int
	negate     bool
}

func buildSteps(tokens []Token) ([]step, error) {
	b := &builder{}
	for _, tok := range tokens {
		if err := b.consume(tok); err != nil {
			return nil, err
		}
	}
	return b.finish()
}

func (b *builder) consume(tok Token) error {
	if b.term != nil && (tok.Kind == TokenAnd || tok.Kind == TokenOr ||
		(tok.Kind == TokenRParen && b.parenDepth == 0)) {
		b.flushTerm()
	}

	switch tok.Kind {
	case TokenAnd:
		b.popWhile(opAnd)
		b.ops = append(b.ops, opAnd)
	case TokenOr:
		b.popWhile(opAnd, opOr)
		b.ops = append(b.ops, opOr)
	case TokenNot:
		// Inside a word a negation sign is just text.
		if b.term != nil {
			b.term.append(tok.Text)
		} else {
			b.negate = !b.negate
		}
	case TokenLParen:
		if b.term != nil {
			// "mane five (g5)": parentheses inside a term are literal.
			b.term.append(tok.Text)
			b.parenDepth++
		} else {
			b.ops = append(b.ops, opLParen)
			b.parenPos = append(b.parenPos, tok.Pos)
			b.groupNegate = append(b.groupNegate, b.negate)
			b.negate = false
		}
	case TokenRParen:
		if b.parenDepth > 0 {
			b.appendText(tok.Text)
			b.parenDepth--
			return nil
		}
		return b.closeGroup(tok.Pos)
	case TokenFuzz:
		b.fuzz = parseModifier(tok.Text)
		b.modText += tok.Text
	case TokenBoost:
		if b.term != nil {
			b.boost = parseModifier(tok.Text)
			b.modText += tok.Text
		} else {
			b.term = newTerm(tok.Text)
		}
	case TokenQuoted:
		b.appendText(tok.Text)
	case TokenWord:
		if b.term != nil && (b.fuzz != 0 || b.boost != 0) {
			// The modifier was part of the value after all.
			b.fuzz, b.boost = 0, 0
			b.term.append(b.modText)
			b.modText = ""
		}
		b.appendText(tok.Text)
	case TokenSpace:
		if b.term != nil {
			b.term.append(tok.Text)
		}
	}
	return nil
}

func (b *builder) appendText(text string) {
	if b.term != nil {
		b.term.append(text)
	} else {
		b.term = newTerm(text)
	}
}

func (b *builder) emitTerm() {
	b.term.raw = strings.TrimSpace(b.term.raw)
	b.term.fuzz = b.fuzz
	b.term.boost = b.boost
	b.out = append(b.out, step{term: b.term})
}

func (b *builder) flushTerm() {
	b.emitTerm()

	b.term = nil
	b.fuzz, b.boost = 0, 0
	b.modText = ""
	b.parenDepth = 0
	if b.negate {
		b.out = append(b.out, step{op: opNot})
		b.negate = false
	}
}

// popWhile moves operators of the given kinds from the queue to the output.
func (b *builder) popWhile(kinds ...opKind) {
	for len(b.ops) > 0 {
		top := b.ops[len(b.ops)-1]
		if !containsOp(kinds, top) {
			return
		}
		b.out = append(b.out, step{op: top})
		b.ops = b.ops[:len(b.ops)-1]
	}
}

func (b *builder) closeGroup(pos int) error {
	for {
		if len(b.ops) == 0 {
			return structuralErrorAt(pos, "mismatched parentheses")
		}
		top := b.ops[len(b.ops)-1]
		b.ops = b.ops[:len(b.ops)-1]
		if top == opLParen {
			break
		}
		b.out = append(b.out, step{op: top})
	}

	b.parenPos = b.parenPos[:len(b.parenPos)-1]
	n := len(b.groupNegate)
	if n > 0 {
		negated := b.groupNegate[n-1]
		b.groupNegate = b.groupNegate[:n-1]
		if negated {
			b.out = append(b.out, step{op: opNot})
		}
	}
	return nil
}

func (b *builder) finish() ([]step, error) {
	if b.term != nil {
		b.emitTerm()
		b.term = nil
	}
	if b.negate {
		b.out = append(b.out, step{op: opNot})
	}

	if n := len(b.parenPos); n > 0 {
		return nil, structuralErrorAt(b.parenPos[n-1], "mismatched parentheses")
	}
	for i := len(b.ops) - 1; i >= 0; i-- {
		b.out = append(b.out, step{op: b.ops[i]})
	}
	return b.out, nil
}

func containsOp(ops []opKind, op opKind) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// parseModifier reads the number after a leading ~ or ^. The token rules
// guarantee the text is numeric.
func parseModifier(text string) float64 {
	v, _ := strconv.ParseFloat(text[1:], 64)
	return v
}
