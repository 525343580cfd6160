package grover

import (
	"strconv"
	"strings"
)

// TokenKind is the variant of a Token.
type TokenKind int8

const (
	TokenNone TokenKind = iota
	// TokenIdent is a variable name, including its leading $.
	TokenIdent
	// TokenNum is a numeric literal.
	TokenNum
	// TokenOp is one of the twelve operators.
	TokenOp
	// TokenOpen is a left parenthesis.
	TokenOpen
	// TokenClose is a right parenthesis.
	TokenClose
)

func (k TokenKind) String() string {
	switch k {
	case TokenNone:
		return "None"
	case TokenIdent:
		return "Ident"
	case TokenNum:
		return "Num"
	case TokenOp:
		return "Op"
	case TokenOpen:
		return "Open"
	case TokenClose:
		return "Close"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Assoc is the associativity of an operator.
type Assoc int8

const (
	// Left groups operators of equal precedence from the left: a-b-c is (a-b)-c.
	Left Assoc = iota
	// Right groups from the right: a^b^c is a^(b^c).
	Right
)

// Op identifies an operator.
type Op int8

const (
	OpPow Op = iota
	OpMul
	OpDiv
	OpRem
	OpAdd
	OpSub
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign

	numOps
)

// Operator describes the syntax of an operator.
type Operator struct {
	// Symbol is the operator's source text.
	Symbol string
	// Prec is the precedence. Lower is more binding.
	Prec int8
	// Assoc is the associativity.
	Assoc Assoc
}

var operators = [numOps]Operator{
	OpPow:       {"^", 0, Right},
	OpMul:       {"*", 1, Left},
	OpDiv:       {"/", 1, Left},
	OpRem:       {"%", 1, Left},
	OpAdd:       {"+", 2, Left},
	OpSub:       {"-", 2, Left},
	OpAssign:    {"=", 3, Right},
	OpAddAssign: {"+=", 3, Right},
	OpSubAssign: {"-=", 3, Right},
	OpMulAssign: {"*=", 3, Right},
	OpDivAssign: {"/=", 3, Right},
	OpRemAssign: {"%=", 3, Right},
}

// Operator returns the descriptor for op. Panics if op is not a valid
// operator.
func (op Op) Operator() Operator {
	if op < 0 || op >= numOps {
		panic("grover: invalid operator " + strconv.Itoa(int(op)))
	}
	return operators[op]
}

func (op Op) String() string {
	if op < 0 || op >= numOps {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return operators[op].Symbol
}

// IsAssign returns whether op is = or a compound assignment.
func (op Op) IsAssign() bool {
	return op >= OpAssign && op < numOps
}

// arith returns the arithmetic operator that a compound assignment applies.
// For any other operator, the result is op itself.
func (op Op) arith() Op {
	switch op {
	case OpAddAssign:
		return OpAdd
	case OpSubAssign:
		return OpSub
	case OpMulAssign:
		return OpMul
	case OpDivAssign:
		return OpDiv
	case OpRemAssign:
		return OpRem
	default:
		return op
	}
}

// Token is a lexical token. Kind selects which of the other fields is
// meaningful.
type Token struct {
	Kind TokenKind
	// Name is the identifier for TokenIdent.
	Name string
	// Num is the value for TokenNum.
	Num float64
	// Op is the operator for TokenOp.
	Op Op
	// Pos is the column of the token's first rune.
	Pos int
}

// Ident creates an identifier token.
func Ident(name string) Token {
	return Token{Kind: TokenIdent, Name: name}
}

// Num creates a number token.
func Num(v float64) Token {
	return Token{Kind: TokenNum, Num: v}
}

// Oper creates an operator token.
func Oper(op Op) Token {
	return Token{Kind: TokenOp, Op: op}
}

// Open creates a left parenthesis token.
func Open() Token {
	return Token{Kind: TokenOpen}
}

// Close creates a right parenthesis token.
func Close() Token {
	return Token{Kind: TokenClose}
}

// at returns a copy of t with its position set.
func (t Token) at(pos int) Token {
	t.Pos = pos
	return t
}

// Equal returns whether t and u are the same token, ignoring position.
func (t Token) Equal(u Token) bool {
	if t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case TokenIdent:
		return t.Name == u.Name
	case TokenNum:
		return t.Num == u.Num
	case TokenOp:
		return t.Op == u.Op
	default:
		return true
	}
}

func (t Token) String() string {
	switch t.Kind {
	case TokenIdent:
		return t.Name
	case TokenNum:
		return strconv.FormatFloat(t.Num, 'g', -1, 64)
	case TokenOp:
		return t.Op.String()
	case TokenOpen:
		return "("
	case TokenClose:
		return ")"
	default:
		return "<" + t.Kind.String() + ">"
	}
}

// Tokens is an ordered token sequence. The parser produces one in postfix
// order, and the evaluator consumes one front to back. Push and Pop treat the
// end of the sequence as the top of a stack.
type Tokens []Token

// Push appends a token.
func (ts *Tokens) Push(t Token) {
	*ts = append(*ts, t)
}

// Pop removes and returns the last token. The second result is false if the
// sequence is empty.
func (ts *Tokens) Pop() (Token, bool) {
	s := *ts
	if len(s) == 0 {
		return Token{}, false
	}
	t := s[len(s)-1]
	*ts = s[:len(s)-1]
	return t, true
}

// Top returns the last token without removing it.
func (ts Tokens) Top() (Token, bool) {
	if len(ts) == 0 {
		return Token{}, false
	}
	return ts[len(ts)-1], true
}

// Len returns the number of tokens.
func (ts Tokens) Len() int {
	return len(ts)
}

// Equal returns whether ts and us hold equal tokens in the same order.
func (ts Tokens) Equal(us Tokens) bool {
	if len(ts) != len(us) {
		return false
	}
	for i := range ts {
		if !ts[i].Equal(us[i]) {
			return false
		}
	}
	return true
}

// String renders the tokens separated by single spaces, e.g. "5 4 + 2 *".
func (ts Tokens) String() string {
	var b strings.Builder
	for i, t := range ts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
	}
	return b.String()
}
