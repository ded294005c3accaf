// Package brain implements the decision side of the perception core: a
// blackboard of named variables fed from detection results, a small
// condition language, a priority-ordered rule evaluator and the
// six-state lifecycle machine that gates when actions are published.
package brain

// The condition language is deliberately tiny: integers, identifiers
// resolved against the blackboard, + and -, the six relational
// operators and && / ||. Evaluation is strictly right-recursive with
// one-token lookahead; && and || have no precedence relative to each
// other and there are no parentheses. Existing rule files depend on
// this shape, so it is preserved as a documented limitation rather
// than extended.

type tokenType int

const (
	tokEnd tokenType = iota
	tokNumber
	tokIdent
	tokGT
	tokLT
	tokGE
	tokLE
	tokEQ
	tokNE
	tokAdd
	tokSub
	tokAnd
	tokOr
)

type token struct {
	typ tokenType
	num int32
	str string
}

// lexer walks a condition string. prevOperand distinguishes a negative
// literal from a subtraction: a minus glued to a digit is a sign only
// when no operand-like token precedes it.
type lexer struct {
	s           string
	pos         int
	prevOperand bool
}

type lexerState struct {
	pos         int
	prevOperand bool
}

func (l *lexer) save() lexerState      { return lexerState{l.pos, l.prevOperand} }
func (l *lexer) restore(st lexerState) { l.pos, l.prevOperand = st.pos, st.prevOperand }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func (l *lexer) next() token {
	for l.pos < len(l.s) && (l.s[l.pos] == ' ' || l.s[l.pos] == '\t' ||
		l.s[l.pos] == '\n' || l.s[l.pos] == '\r') {
		l.pos++
	}
	if l.pos >= len(l.s) {
		return token{typ: tokEnd}
	}

	c := l.s[l.pos]

	if isDigit(c) || (c == '-' && !l.prevOperand &&
		l.pos+1 < len(l.s) && isDigit(l.s[l.pos+1])) {
		neg := false
		if c == '-' {
			neg = true
			l.pos++
		}
		var n int32
		for l.pos < len(l.s) && isDigit(l.s[l.pos]) {
			n = n*10 + int32(l.s[l.pos]-'0')
			l.pos++
		}
		if neg {
			n = -n
		}
		l.prevOperand = true
		return token{typ: tokNumber, num: n}
	}

	two := func(t tokenType) token {
		l.pos += 2
		l.prevOperand = false
		return token{typ: t}
	}
	one := func(t tokenType) token {
		l.pos++
		l.prevOperand = false
		return token{typ: t}
	}

	if l.pos+1 < len(l.s) {
		switch l.s[l.pos : l.pos+2] {
		case ">=":
			return two(tokGE)
		case "<=":
			return two(tokLE)
		case "==":
			return two(tokEQ)
		case "!=":
			return two(tokNE)
		case "&&":
			return two(tokAnd)
		case "||":
			return two(tokOr)
		}
	}
	switch c {
	case '>':
		return one(tokGT)
	case '<':
		return one(tokLT)
	case '+':
		return one(tokAdd)
	case '-':
		return one(tokSub)
	}

	if isIdentStart(c) {
		start := l.pos
		for l.pos < len(l.s) && isIdentPart(l.s[l.pos]) {
			l.pos++
		}
		name := l.s[start:l.pos]
		if len(name) > MAX_NAME_LEN {
			name = name[:MAX_NAME_LEN]
		}
		l.prevOperand = true
		return token{typ: tokIdent, str: name}
	}

	// Anything unrecognized terminates evaluation.
	l.pos = len(l.s)
	return token{typ: tokEnd}
}

// evalValue parses atom (('+'|'-') value)?, right-associative. An
// identifier missing from the blackboard reads as 0.
func evalValue(l *lexer, vars *Blackboard) int32 {
	tok := l.next()

	var value int32
	switch tok.typ {
	case tokNumber:
		value = tok.num
	case tokIdent:
		value = vars.Get(tok.str)
	}

	saved := l.save()
	switch op := l.next(); op.typ {
	case tokAdd:
		value += evalValue(l, vars)
	case tokSub:
		value -= evalValue(l, vars)
	default:
		l.restore(saved)
	}
	return value
}

// evalCondition parses value (relop value)? (logical condition)?. A
// bare value is true when nonzero. Chained logical operators associate
// right with no precedence between && and ||.
func evalCondition(l *lexer, vars *Blackboard) bool {
	left := evalValue(l, vars)

	op := l.next()
	if op.typ == tokEnd {
		return left != 0
	}

	right := evalValue(l, vars)

	var result bool
	switch op.typ {
	case tokGT:
		result = left > right
	case tokLT:
		result = left < right
	case tokGE:
		result = left >= right
	case tokLE:
		result = left <= right
	case tokEQ:
		result = left == right
	case tokNE:
		result = left != right
	}

	saved := l.save()
	switch logical := l.next(); logical.typ {
	case tokAnd:
		return result && evalCondition(l, vars)
	case tokOr:
		return result || evalCondition(l, vars)
	default:
		l.restore(saved)
	}
	return result
}

// Eval evaluates a condition string against the blackboard.
func Eval(condition string, vars *Blackboard) bool {
	l := &lexer{s: condition}
	return evalCondition(l, vars)
}
