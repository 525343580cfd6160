package grover

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// Lexer scans tokens from a source string. Its sequence of tokens is finite
// and cannot be restarted; scanning the same text again requires a new Lexer.
type Lexer struct {
	src   *strings.Reader
	buf   strings.Builder
	radix int
	rune  int
	state uint8
	err   *Error
}

// Lexer states. good is cleared when either bad or end is set, and neither of
// those is ever cleared.
const (
	good uint8 = 1 << iota
	bad
	end
)

// NewLexer creates a lexer over src which reads numbers in the given radix.
// Panics if radix is not in [2, 36].
func NewLexer(src string, radix int) *Lexer {
	if radix < 2 || radix > 36 {
		panic("grover: invalid radix " + strconv.Itoa(radix))
	}
	return &Lexer{
		src:   strings.NewReader(src),
		radix: radix,
		state: good,
	}
}

// Good returns whether the lexer may scan more tokens.
func (l *Lexer) Good() bool {
	return l.state&good != 0
}

// Bad returns whether the lexer stopped on invalid input.
func (l *Lexer) Bad() bool {
	return l.state&bad != 0
}

// End returns whether the lexer scanned all of its input.
func (l *Lexer) End() bool {
	return l.state&end != 0
}

// Err returns the error that stopped the lexer, or nil if it is not bad. The
// error is always an *Error with code LexerError.
func (l *Lexer) Err() error {
	if !l.Bad() {
		return nil
	}
	return l.err
}

// Radix returns the radix in which the lexer reads numbers.
func (l *Lexer) Radix() int {
	return l.radix
}

// All scans all remaining tokens. If the lexer stops on an error, the result
// holds the tokens up to the error, and Err reports it.
func (l *Lexer) All() Tokens {
	var ts Tokens
	for {
		tok, ok := l.Next()
		if !ok {
			return ts
		}
		ts.Push(tok)
	}
}

// ValidName returns whether name is exactly one identifier token, e.g. "$x".
func ValidName(name string) bool {
	tok, ok := NewLexer(name, 10).Next()
	return ok && tok.Kind == TokenIdent && tok.Name == name
}

// readRune reads a rune from the src and updates the lexer's position info.
// The result is false at the end of input.
func (l *Lexer) readRune() (rune, bool) {
	r, sz, err := l.src.ReadRune()
	if err != nil {
		return 0, false
	}
	if sz > 0 {
		l.rune++
	}
	return r, true
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *Lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// peek returns the next rune without consuming it.
func (l *Lexer) peek() (rune, bool) {
	r, ok := l.readRune()
	if ok {
		l.unreadRune()
	}
	return r, ok
}

// fail moves the lexer to the bad state.
func (l *Lexer) fail(col int, msg string) (Token, bool) {
	l.state = l.state&^good | bad
	l.err = newError(LexerError, col, msg)
	return Token{}, false
}

// Next scans the next token. The result is false once the input is exhausted
// or after any error, and it stays false for every later call.
func (l *Lexer) Next() (Token, bool) {
	if !l.Good() {
		return Token{}, false
	}
	for {
		r, ok := l.readRune()
		if !ok {
			l.state = l.state&^good | end
			return Token{}, false
		}
		pos := l.rune
		switch {
		case r == ' ':
			continue
		case r == '$':
			return l.scanIdent(pos)
		case r == '(':
			return Open().at(pos), true
		case r == ')':
			return Close().at(pos), true
		case r == '=':
			return Oper(OpAssign).at(pos), true
		case r == '^':
			// There is no ^= operator, so ^ never combines.
			return Oper(OpPow).at(pos), true
		case r == '+', r == '-', r == '*', r == '/', r == '%':
			op := arithrunes[r]
			if n, ok := l.peek(); ok && n == '=' {
				l.readRune()
				op = compound(op)
			}
			return Oper(op).at(pos), true
		case l.isDigit(r), l.radix == 10 && r == '.':
			l.unreadRune()
			return l.scanNum(pos)
		default:
			return l.fail(pos, "Invalid character '"+string(r)+"'.")
		}
	}
}

var arithrunes = map[rune]Op{
	'+': OpAdd,
	'-': OpSub,
	'*': OpMul,
	'/': OpDiv,
	'%': OpRem,
}

// compound gets the compound assignment form of an arithmetic operator other
// than ^.
func compound(op Op) Op {
	switch op {
	case OpAdd:
		return OpAddAssign
	case OpSub:
		return OpSubAssign
	case OpMul:
		return OpMulAssign
	case OpDiv:
		return OpDivAssign
	case OpRem:
		return OpRemAssign
	default:
		panic("grover: no compound assignment for " + op.String())
	}
}

// scanIdent scans an identifier. The $ has already been consumed.
func (l *Lexer) scanIdent(pos int) (Token, bool) {
	defer l.buf.Reset()
	l.buf.WriteByte('$')
	r, ok := l.readRune()
	if !ok {
		return l.fail(pos, "Variable name must be at least one character long.")
	}
	if r != '_' && !unicode.IsLetter(r) {
		return l.fail(l.rune, "Variable name must start with a letter or underscore. Found '"+string(r)+"'.")
	}
	l.buf.WriteRune(r)
	for {
		r, ok := l.readRune()
		if !ok {
			break
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
	}
	return Ident(l.buf.String()).at(pos), true
}

// scanNum scans a number in the lexer's radix.
func (l *Lexer) scanNum(pos int) (Token, bool) {
	defer l.buf.Reset()
	for {
		r, ok := l.readRune()
		if !ok {
			break
		}
		if !l.isDigit(r) && !(l.radix == 10 && r == '.') {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
	}
	text := l.buf.String()
	if l.radix == 10 {
		v, err := strconv.ParseFloat(text, 64)
		// Decimals too large for float64 become infinities.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return l.fail(pos, "Could not parse '"+text+"' to f64.")
		}
		return Num(v).at(pos), true
	}
	v, err := strconv.ParseInt(text, l.radix, 64)
	if err != nil {
		return l.fail(pos, "Could not parse '"+text+"' to f64.")
	}
	return Num(float64(v)).at(pos), true
}

// isDigit returns whether r is a digit in the lexer's radix. Digits past 9
// are ASCII letters of either case.
func (l *Lexer) isDigit(r rune) bool {
	return digitval(r) < l.radix
}

func digitval(r rune) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case 'a' <= r && r <= 'z':
		return int(r-'a') + 10
	case 'A' <= r && r <= 'Z':
		return int(r-'A') + 10
	default:
		return 36
	}
}
