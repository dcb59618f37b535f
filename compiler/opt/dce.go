package opt

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/df"
	"github.com/slowlang/tinyl/compiler/ir"
)

type (
	// Eliminator removes instructions whose values never reach a READ or WRITE.
	//
	// Each kept instruction consumes exactly one pending demand for the value
	// it defines. Demands left when the sweep reaches the first instruction
	// are dropped.
	Eliminator struct {
		// DedupOperands skips an operand demand if an equal one is pending.
		// WRITE demands are always added.
		DedupOperands bool
	}

	Stats struct {
		Visited  int
		Kept     int
		Removed  int
		Leftover int
	}
)

var ErrNoInstructions = errors.New("no instructions")

func Eliminate(ctx context.Context, s *ir.Seq) (Stats, error) {
	var e Eliminator

	return e.Eliminate(ctx, s)
}

// Eliminate sweeps s from last to first, unlinking dead instructions in place.
func (e *Eliminator) Eliminate(ctx context.Context, s *ir.Seq) (st Stats, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "opt: eliminate dead code", "instrs", s.Len(), "dedup_operands", e.DedupOperands)
	defer tr.Finish("err", &err)

	if s.Len() == 0 {
		return st, ErrNoInstructions
	}

	var ds df.Demands

	s.RangeBack(func(i int, x ir.Instr) bool {
		st.Visited++

		switch x.Op {
		case ir.READ:
		case ir.WRITE:
			ds.Add(df.Demand{Value: x.Field1, Kind: df.Var})
		default:
			d := defines(x)

			if !ds.Consume(d) {
				tr.V("dce").Printw("remove", "slot", i, "instr", x)

				s.Remove(i)
				st.Removed++

				return true
			}

			e.demandOperands(&ds, x)
		}

		tr.V("dce").Printw("keep", "slot", i, "instr", x, "pending", ds.Len())

		st.Kept++

		return true
	})

	st.Leftover = ds.Len()

	if st.Leftover != 0 {
		tr.Printw("unmatched demands dropped", "demands", &ds)
	}

	tr.Printw("dead code eliminated", "visited", st.Visited, "kept", st.Kept, "removed", st.Removed)

	return st, nil
}

func (e *Eliminator) demandOperands(ds *df.Demands, x ir.Instr) {
	add := ds.Add

	if e.DedupOperands {
		add = func(d df.Demand) { ds.AddOnce(d) }
	}

	switch {
	case x.Op == ir.LOAD:
		add(df.Demand{Value: x.Field2, Kind: df.Var})
	case x.Op == ir.STORE:
		add(df.Demand{Value: x.Field2, Kind: df.Reg})
	case x.Op.Binary():
		add(df.Demand{Value: x.Field3, Kind: df.Reg})
		add(df.Demand{Value: x.Field2, Kind: df.Reg})
	}
}

func defines(x ir.Instr) df.Demand {
	if x.Op == ir.STORE {
		return df.Demand{Value: x.Field1, Kind: df.Var}
	}

	return df.Demand{Value: x.Field1, Kind: df.Reg}
}
