package grover

// Expr = Term | Expr binop Expr | ident assignop Expr
// Term = num | ident | '(' Expr ')' | '+' Term | '-' Term
//
// The parser does not build a tree. It reorders the lexer's tokens into
// postfix order with the shunting-yard algorithm. Unary + and - become
// multiplication by 1 or -1.

// expect is a set of token classes that are legal at some point in the input.
type expect uint8

const (
	expectIdent expect = 1 << iota
	expectNum
	expectUnaryPlus
	expectUnaryMinus
	expectOpen
	expectAssign
	expectArith
	expectClose
)

const (
	// expectValue is the set of tokens which can begin a value.
	expectValue = expectIdent | expectNum | expectUnaryPlus | expectUnaryMinus | expectOpen
	// expectOperator is the set of tokens which can follow a value.
	expectOperator = expectAssign | expectArith | expectClose
)

// Parser reorders the tokens from a lexer into postfix order.
type Parser struct {
	scan *Lexer
}

// NewParser creates a parser reading from l.
func NewParser(l *Lexer) *Parser {
	return &Parser{scan: l}
}

// Parse is a shortcut to lex and parse a source string.
func Parse(src string, radix int) (Tokens, error) {
	return NewParser(NewLexer(src, radix)).Intermediate()
}

// Intermediate drains the parser's lexer and returns its tokens in postfix
// order. Since lexers cannot be restarted, a second call to Intermediate sees
// an empty input.
func (p *Parser) Intermediate() (Tokens, error) {
	var (
		out, ops Tokens
		// opens is the columns of the unmatched left parentheses.
		opens []int
		want  = expectValue
		n     int
	)
	for {
		tok, ok := p.scan.Next()
		if !ok {
			break
		}
		n++
		switch tok.Kind {
		case TokenIdent:
			if want&expectIdent == 0 {
				return nil, unexpected(tok)
			}
			out.Push(tok)
			want = expectOperator
		case TokenNum:
			if want&expectNum == 0 {
				return nil, unexpected(tok)
			}
			out.Push(tok)
			want = expectOperator
		case TokenOp:
			switch {
			case tok.Op == OpAdd, tok.Op == OpSub:
				unary, sign := expectUnaryPlus, 1.0
				if tok.Op == OpSub {
					unary, sign = expectUnaryMinus, -1.0
				}
				if want&(unary|expectArith) == 0 {
					return nil, unexpected(tok)
				}
				if want&unary != 0 {
					// +x -> 1*x and -x -> -1*x. The multiplication goes
					// straight onto the stack so that it binds to the next
					// term before anything else.
					out.Push(Num(sign).at(tok.Pos))
					ops.Push(Oper(OpMul).at(tok.Pos))
					want = expectValue
					continue
				}
			case tok.Op.IsAssign():
				if want&expectAssign == 0 {
					return nil, unexpected(tok)
				}
			default:
				if want&expectArith == 0 {
					return nil, unexpected(tok)
				}
			}
			if err := popBinding(&out, &ops, tok); err != nil {
				return nil, err
			}
			ops.Push(tok)
			want = expectValue
		case TokenOpen:
			if want&expectOpen == 0 {
				return nil, unexpected(tok)
			}
			opens = append(opens, tok.Pos)
			ops.Push(tok)
			want = expectValue
		case TokenClose:
			if len(opens) == 0 {
				return nil, newError(MalformedExpression, tok.Pos, "Dangling right parenthesis.")
			}
			if want&expectClose == 0 {
				return nil, unexpected(tok)
			}
			opens = opens[:len(opens)-1]
			if err := popGroup(&out, &ops, tok); err != nil {
				return nil, err
			}
			want = expectOperator
		default:
			return nil, newError(ParserError, tok.Pos, "Unknown token "+tok.Kind.String()+".")
		}
	}
	if err := p.scan.Err(); err != nil {
		return nil, err
	}
	if len(opens) != 0 {
		return nil, newError(MalformedExpression, opens[len(opens)-1], "Unclosed left parenthesis.")
	}
	if want&expectNum != 0 {
		if n == 0 {
			return nil, newError(MalformedExpression, 0, "Empty expression.")
		}
		return nil, newError(MalformedExpression, 0, "Unexpected end of expression.")
	}
	for {
		top, ok := ops.Pop()
		if !ok {
			break
		}
		if top.Kind != TokenOp {
			return nil, newError(ParserError, top.Pos, "Found '"+top.String()+"' where an operator was expected.")
		}
		out.Push(top)
	}
	return out, nil
}

// popBinding moves operators which bind more tightly than tok from the top
// of ops to out. It stops at a left parenthesis.
func popBinding(out, ops *Tokens, tok Token) error {
	in := tok.Op.Operator()
	for {
		top, ok := ops.Top()
		if !ok {
			return nil
		}
		switch top.Kind {
		case TokenOpen:
			return nil
		case TokenOp: // do nothing
		case TokenClose:
			return newError(ParserError, top.Pos, "Right parenthesis on the operator stack.")
		default:
			return newError(ParserError, top.Pos, "Found '"+top.String()+"' where an operator was expected.")
		}
		o := top.Op.Operator()
		if o.Prec > in.Prec || o.Prec == in.Prec && in.Assoc == Right {
			return nil
		}
		ops.Pop()
		out.Push(top)
	}
}

// popGroup moves operators from ops to out up to the nearest left
// parenthesis, which it discards.
func popGroup(out, ops *Tokens, tok Token) error {
	for {
		top, ok := ops.Pop()
		if !ok {
			return newError(ParserError, tok.Pos, "Operator stack exhausted before finding a left parenthesis.")
		}
		switch top.Kind {
		case TokenOpen:
			return nil
		case TokenOp:
			out.Push(top)
		default:
			return newError(ParserError, top.Pos, "Found '"+top.String()+"' where an operator was expected.")
		}
	}
}

// unexpected returns an error for a token that is illegal where it appears.
func unexpected(tok Token) error {
	var msg string
	switch tok.Kind {
	case TokenIdent:
		msg = "Unexpected identifier '" + tok.Name + "'."
	case TokenNum:
		msg = "Unexpected number '" + tok.String() + "'."
	case TokenOp:
		msg = "Unexpected operator '" + tok.Op.String() + "'."
	case TokenOpen:
		msg = "Unexpected left parenthesis."
	case TokenClose:
		msg = "Unexpected right parenthesis."
	default:
		msg = "Unexpected token " + tok.Kind.String() + "."
	}
	return newError(MalformedExpression, tok.Pos, msg)
}
