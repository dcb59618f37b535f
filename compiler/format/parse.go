package format

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/ir"
)

type (
	SyntaxError struct {
		Line   int
		Text   string
		Reason string
	}
)

// Read parses instructions from r, one per line.
// Blank lines and text after "//" are skipped.
func Read(ctx context.Context, r io.Reader) (s *ir.Seq, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "format: read ir")
	defer tr.Finish("err", &err)

	s = ir.NewSeq()

	sc := bufio.NewScanner(r)

	lnum := 0
	for sc.Scan() {
		lnum++

		line := sc.Bytes()

		if c := bytes.Index(line, []byte("//")); c >= 0 {
			line = line[:c]
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		x, err := ParseInstr(line)
		if err != nil {
			var serr *SyntaxError
			if errors.As(err, &serr) {
				serr.Line = lnum
			}

			return nil, err
		}

		s.Append(x)
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scanner")
	}

	tr.V("format").Printw("read ir", "lines", lnum, "instrs", s.Len())

	return s, nil
}

func Parse(ctx context.Context, text []byte) (*ir.Seq, error) {
	return Read(ctx, bytes.NewReader(text))
}

// ParseInstr parses a single instruction line without the line terminator.
func ParseInstr(line []byte) (x ir.Instr, err error) {
	f := bytes.Fields(line)

	fail := func(reason string, args ...any) (ir.Instr, error) {
		return ir.Instr{}, &SyntaxError{Text: string(line), Reason: fmt.Sprintf(reason, args...)}
	}

	if len(f) == 0 {
		return fail("empty line")
	}

	op, ok := ir.ParseOp(string(f[0]))
	if !ok {
		return fail("unknown opcode %q", f[0])
	}

	want := 2

	switch {
	case op == ir.LOADI, op == ir.LOAD, op == ir.STORE:
		want = 3
	case op.Binary():
		want = 4
	}

	if len(f) != want {
		return fail("%v: want %d operands, got %d", op, want-1, len(f)-1)
	}

	var a, b, c int

	switch {
	case op == ir.LOADI:
		a, err = parseReg(f[1])
		if err == nil {
			b, err = parseImm(f[2])
		}

		x = ir.LoadI(ir.Reg(a), b)
	case op == ir.LOAD:
		a, err = parseReg(f[1])
		if err == nil {
			b, err = parseVar(f[2])
		}

		x = ir.Load(ir.Reg(a), ir.Var(b))
	case op == ir.STORE:
		a, err = parseVar(f[1])
		if err == nil {
			b, err = parseReg(f[2])
		}

		x = ir.Store(ir.Var(a), ir.Reg(b))
	case op.Binary():
		a, err = parseReg(f[1])
		if err == nil {
			b, err = parseReg(f[2])
		}
		if err == nil {
			c, err = parseReg(f[3])
		}

		x = ir.Binary(op, ir.Reg(a), ir.Reg(b), ir.Reg(c))
	case op == ir.READ:
		a, err = parseVar(f[1])

		x = ir.Read(ir.Var(a))
	case op == ir.WRITE:
		a, err = parseVar(f[1])

		x = ir.Write(ir.Var(a))
	}

	if err != nil {
		return fail("%v: %v", op, err)
	}

	return x, nil
}

func parseReg(f []byte) (int, error) {
	if len(f) < 2 || f[0] != 'r' {
		return 0, errors.New("register expected: %q", f)
	}

	return strconv.Atoi(string(f[1:]))
}

func parseImm(f []byte) (int, error) {
	if len(f) < 2 || f[0] != '#' {
		return 0, errors.New("immediate expected: %q", f)
	}

	return strconv.Atoi(string(f[1:]))
}

func parseVar(f []byte) (int, error) {
	if len(f) != 1 || !ir.IsVar(f[0]) {
		return 0, errors.New("variable expected: %q", f)
	}

	return int(f[0]), nil
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("bad instruction %q: %s", e.Text, e.Reason)
	}

	return fmt.Sprintf("line %d: bad instruction %q: %s", e.Line, e.Text, e.Reason)
}
