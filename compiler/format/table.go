package format

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/slowlang/tinyl/compiler/ir"
)

// Table renders s as a human readable table, one row per live instruction.
func Table(title string, s *ir.Seq) string {
	t := table.NewWriter()

	if title != "" {
		t.SetTitle(title)
	}

	t.AppendHeader(table.Row{"#", "Slot", "Op", "Field1", "Field2", "Field3"})

	n := 0

	for i := s.First(); i != ir.None; i = s.Next(i) {
		x := s.At(i)
		n++

		t.AppendRow(table.Row{n, i, x.Op, field(x, 1), field(x, 2), field(x, 3)})
	}

	t.AppendFooter(table.Row{"", "", "total", n})

	return t.Render()
}

func field(x ir.Instr, k int) string {
	v := [...]int{x.Field1, x.Field2, x.Field3}[k-1]

	if v == ir.Empty {
		return ""
	}

	isVar := x.Op == ir.LOAD && k == 2 ||
		(x.Op == ir.STORE || x.Op == ir.READ || x.Op == ir.WRITE) && k == 1

	switch {
	case isVar:
		return ir.Var(v).String()
	case x.Op == ir.LOADI && k == 2:
		return "#" + strconv.Itoa(v)
	default:
		return "r" + strconv.Itoa(v)
	}
}
