package front

import (
	"context"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/ir"
)

type (
	Token interface{}

	Char byte

	// Class names a set of tokens in error messages.
	Class string

	UnexpectedError struct {
		Pos   int
		Token Token // nil at end of input
		Want  []Token
	}
)

const (
	Variable   Class = "variable"
	Digit      Class = "digit"
	Expression Class = "expression"
)

func (s *State) parseProgram(ctx context.Context, st int) (i int, err error) {
	i, err = s.parseStmtList(ctx, st)
	if err != nil {
		return i, err
	}

	tk, tst, i := s.next(ctx, i)
	if tk != Char('!') {
		return tst, NewUnexpected(tst, tk, Char('!'))
	}

	return i, nil
}

func (s *State) parseStmtList(ctx context.Context, st int) (i int, err error) {
	i, err = s.parseStmt(ctx, st)
	if err != nil {
		return i, err
	}

	return s.parseMoreStmts(ctx, i)
}

func (s *State) parseMoreStmts(ctx context.Context, st int) (i int, err error) {
	tk, _, i := s.next(ctx, st)
	if tk != Char(';') {
		return st, nil
	}

	return s.parseStmtList(ctx, i)
}

func (s *State) parseStmt(ctx context.Context, st int) (i int, err error) {
	tk, tst, _ := s.next(ctx, st)

	switch c, _ := tk.(Char); {
	case tk != nil && ir.IsVar(byte(c)):
		return s.parseAssign(ctx, st)
	case c == '%':
		return s.parseRead(ctx, st)
	case c == '$':
		return s.parsePrint(ctx, st)
	default:
		return tst, NewUnexpected(tst, tk, Variable, Char('%'), Char('$'))
	}
}

func (s *State) parseAssign(ctx context.Context, st int) (i int, err error) {
	v, i, err := s.parseVar(ctx, st)
	if err != nil {
		return i, err
	}

	tk, tst, i := s.next(ctx, i)
	if tk != Char('=') {
		return tst, NewUnexpected(tst, tk, Char('='))
	}

	r, i, err := s.parseExpr(ctx, i)
	if err != nil {
		return i, errors.Wrap(err, "assign %v", v)
	}

	s.emit(ctx, ir.Store(v, r))

	return i, nil
}

func (s *State) parseRead(ctx context.Context, st int) (i int, err error) {
	tk, tst, i := s.next(ctx, st)
	if tk != Char('%') {
		return tst, NewUnexpected(tst, tk, Char('%'))
	}

	v, i, err := s.parseVar(ctx, i)
	if err != nil {
		return i, err
	}

	s.emit(ctx, ir.Read(v))

	return i, nil
}

func (s *State) parsePrint(ctx context.Context, st int) (i int, err error) {
	tk, tst, i := s.next(ctx, st)
	if tk != Char('$') {
		return tst, NewUnexpected(tst, tk, Char('$'))
	}

	v, i, err := s.parseVar(ctx, i)
	if err != nil {
		return i, err
	}

	s.emit(ctx, ir.Write(v))

	return i, nil
}

func (s *State) parseExpr(ctx context.Context, st int) (r ir.Reg, i int, err error) {
	tk, tst, _ := s.next(ctx, st)

	c, _ := tk.(Char)

	switch {
	case tk == nil:
	case c == '+' || c == '-' || c == '*':
		return s.parseArith(ctx, st)
	case c == '&' || c == '|':
		return s.parseLogical(ctx, st)
	case ir.IsVar(byte(c)):
		r = s.nextReg()

		v, i, err := s.parseVar(ctx, st)
		if err != nil {
			return 0, i, err
		}

		s.emit(ctx, ir.Load(r, v))

		return r, i, nil
	case isDigit(byte(c)):
		return s.parseDigit(ctx, st)
	}

	return 0, tst, NewUnexpected(tst, tk, Expression)
}

func (s *State) parseArith(ctx context.Context, st int) (r ir.Reg, i int, err error) {
	tk, tst, i := s.next(ctx, st)

	var op ir.Op

	switch tk {
	case Char('+'):
		op = ir.ADD
	case Char('-'):
		op = ir.SUB
	case Char('*'):
		op = ir.MUL
	default:
		return 0, tst, NewUnexpected(tst, tk, Char('+'), Char('-'), Char('*'))
	}

	return s.parseOperands(ctx, op, i)
}

func (s *State) parseLogical(ctx context.Context, st int) (r ir.Reg, i int, err error) {
	tk, tst, i := s.next(ctx, st)

	var op ir.Op

	switch tk {
	case Char('&'):
		op = ir.AND
	case Char('|'):
		op = ir.OR
	default:
		return 0, tst, NewUnexpected(tst, tk, Char('&'), Char('|'))
	}

	return s.parseOperands(ctx, op, i)
}

func (s *State) parseOperands(ctx context.Context, op ir.Op, st int) (r ir.Reg, i int, err error) {
	l, i, err := s.parseExpr(ctx, st)
	if err != nil {
		return 0, i, errors.Wrap(err, "%v left", op)
	}

	rr, i, err := s.parseExpr(ctx, i)
	if err != nil {
		return 0, i, errors.Wrap(err, "%v right", op)
	}

	r = s.nextReg()

	s.emit(ctx, ir.Binary(op, r, l, rr))

	return r, i, nil
}

func (s *State) parseVar(ctx context.Context, st int) (v ir.Var, i int, err error) {
	tk, tst, i := s.next(ctx, st)

	c, ok := tk.(Char)
	if !ok || !ir.IsVar(byte(c)) {
		return 0, tst, NewUnexpected(tst, tk, Variable)
	}

	return ir.Var(c), i, nil
}

func (s *State) parseDigit(ctx context.Context, st int) (r ir.Reg, i int, err error) {
	tk, tst, i := s.next(ctx, st)

	c, ok := tk.(Char)
	if !ok || !isDigit(byte(c)) {
		return 0, tst, NewUnexpected(tst, tk, Digit)
	}

	r = s.nextReg()

	s.emit(ctx, ir.LoadI(r, int(c-'0')))

	return r, i, nil
}

func (s *State) next(ctx context.Context, st int) (tk Token, tst int, i int) {
	if tr := tlog.SpanFromContext(ctx); tr.If("next_token") {
		defer func(st int) {
			tr.Printw("next token", "st", st, "tk", tk, "i", i, "from", loc.Callers(1, 3))
		}(st)
	}

	if st >= len(s.b) {
		return nil, st, st
	}

	return Char(s.b[st]), st, st + 1
}

func (s *State) nextReg() ir.Reg {
	s.reg++

	return s.reg
}

func (s *State) emit(ctx context.Context, x ir.Instr) {
	s.seq.Append(x)

	tlog.SpanFromContext(ctx).V("codegen").Printw("emit", "instr", x, "from", loc.Caller(1))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func NewUnexpected(pos int, got Token, want ...Token) error {
	return &UnexpectedError{
		Pos:   pos,
		Token: got,
		Want:  want,
	}
}

func (e *UnexpectedError) Error() string {
	l := make([]string, len(e.Want))

	for i := range e.Want {
		l[i] = tokenString(e.Want[i])
	}

	if e.Token == nil {
		return "unexpected end of input, want: " + strings.Join(l, ", ")
	}

	return "unexpected token " + tokenString(e.Token) + ", want: " + strings.Join(l, ", ")
}

func tokenString(t Token) string {
	switch t := t.(type) {
	case nil:
		return "end of input"
	case Char:
		return t.String()
	case Class:
		return string(t)
	default:
		return "?"
	}
}

func (c Char) String() string {
	return strconv.QuoteRune(rune(c))
}
