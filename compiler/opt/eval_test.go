package opt

import (
	"math/rand"
	"strings"

	"github.com/slowlang/tinyl/compiler/ir"
)

// eval runs s, taking READ values from in, and returns the WRITE values.
func eval(s *ir.Seq, in []int) (out []int) {
	var vars [256]int
	regs := map[int]int{}

	s.Range(func(_ int, x ir.Instr) bool {
		switch x.Op {
		case ir.LOADI:
			regs[x.Field1] = x.Field2
		case ir.LOAD:
			regs[x.Field1] = vars[x.Field2]
		case ir.STORE:
			vars[x.Field1] = regs[x.Field2]
		case ir.ADD:
			regs[x.Field1] = regs[x.Field2] + regs[x.Field3]
		case ir.SUB:
			regs[x.Field1] = regs[x.Field2] - regs[x.Field3]
		case ir.MUL:
			regs[x.Field1] = regs[x.Field2] * regs[x.Field3]
		case ir.AND:
			regs[x.Field1] = regs[x.Field2] & regs[x.Field3]
		case ir.OR:
			regs[x.Field1] = regs[x.Field2] | regs[x.Field3]
		case ir.READ:
			v := 0
			if len(in) != 0 {
				v, in = in[0], in[1:]
			}

			vars[x.Field1] = v
		case ir.WRITE:
			out = append(out, vars[x.Field1])
		}

		return true
	})

	return out
}

func genProgram(r *rand.Rand, stmts int) string {
	var b strings.Builder

	for i := 0; i < stmts; i++ {
		if i != 0 {
			b.WriteByte(';')
		}

		v := ir.Vars[r.Intn(len(ir.Vars))]

		switch r.Intn(5) {
		case 0:
			b.WriteByte('%')
			b.WriteByte(v)
		case 1:
			b.WriteByte('$')
			b.WriteByte(v)
		default:
			b.WriteByte(v)
			b.WriteByte('=')
			genExpr(&b, r, 3)
		}
	}

	b.WriteByte('!')

	return b.String()
}

func genExpr(b *strings.Builder, r *rand.Rand, depth int) {
	const ops = "+-*&|"

	switch k := r.Intn(3); {
	case depth > 0 && k == 0:
		b.WriteByte(ops[r.Intn(len(ops))])
		genExpr(b, r, depth-1)
		genExpr(b, r, depth-1)
	case k == 1:
		b.WriteByte(ir.Vars[r.Intn(len(ir.Vars))])
	default:
		b.WriteByte(byte('0' + r.Intn(10)))
	}
}
