package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/tinyl/compiler/ir"
)

// Format appends the text form of x: an ir.Instr, a slice of them or an *ir.Seq.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case ir.Instr:
		return formatInstr(b, x)
	case []ir.Instr:
		return formatList(b, x)
	case *ir.Seq:
		return formatSeq(b, x)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatSeq(b []byte, s *ir.Seq) (_ []byte, err error) {
	s.Range(func(i int, x ir.Instr) bool {
		b, err = formatInstr(b, x)
		if err != nil {
			err = errors.Wrap(err, "instr %d", i)
			return false
		}

		return true
	})

	if err != nil {
		return nil, err
	}

	return b, nil
}

func formatList(b []byte, l []ir.Instr) (_ []byte, err error) {
	for i, x := range l {
		b, err = formatInstr(b, x)
		if err != nil {
			return nil, errors.Wrap(err, "instr %d", i)
		}
	}

	return b, nil
}

func formatInstr(b []byte, x ir.Instr) ([]byte, error) {
	switch {
	case x.Op == ir.LOADI:
		b = hfmt.Appendf(b, "%v r%d #%d\n", x.Op, x.Field1, x.Field2)
	case x.Op == ir.LOAD:
		b = hfmt.Appendf(b, "%v r%d %v\n", x.Op, x.Field1, ir.Var(x.Field2))
	case x.Op == ir.STORE:
		b = hfmt.Appendf(b, "%v %v r%d\n", x.Op, ir.Var(x.Field1), x.Field2)
	case x.Op.Binary():
		b = hfmt.Appendf(b, "%v r%d r%d r%d\n", x.Op, x.Field1, x.Field2, x.Field3)
	case x.Op == ir.READ, x.Op == ir.WRITE:
		b = hfmt.Appendf(b, "%v %v\n", x.Op, ir.Var(x.Field1))
	default:
		return nil, errors.New("unsupported opcode: %d", x.Op)
	}

	return b, nil
}
