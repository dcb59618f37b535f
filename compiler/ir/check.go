package ir

import (
	"fmt"
)

type (
	// CheckError describes the first instruction breaking the register invariant.
	CheckError struct {
		Index  int
		Instr  Instr
		Reg    Reg
		Reason string
	}
)

// Check verifies that every register read by an instruction is defined
// exactly once by an earlier instruction, and that variable fields name
// one of the six variables.
// Register numbers read from text are unbounded.
func Check(s *Seq) error {
	defined := make(map[Reg]struct{}, s.Len())

	var uses []Reg
	var err error

	s.Range(func(i int, x Instr) bool {
		fail := func(r Reg, reason string) bool {
			err = &CheckError{Index: i, Instr: x, Reg: r, Reason: reason}
			return false
		}

		if !x.Op.Valid() {
			return fail(0, "bad opcode")
		}

		switch x.Op {
		case LOAD:
			if !Var(x.Field2).Valid() {
				return fail(0, "bad variable")
			}
		case STORE, READ, WRITE:
			if !Var(x.Field1).Valid() {
				return fail(0, "bad variable")
			}
		}

		uses = x.Uses(uses[:0])

		for _, r := range uses {
			if _, ok := defined[r]; r < 1 || !ok {
				return fail(r, "use before definition")
			}
		}

		if r, ok := x.Defines(); ok {
			if r < 1 {
				return fail(r, "bad register")
			}

			if _, ok := defined[r]; ok {
				return fail(r, "redefinition")
			}

			defined[r] = struct{}{}
		}

		return true
	})

	return err
}

func (e *CheckError) Error() string {
	if e.Reg == 0 {
		return fmt.Sprintf("instr %d (%v): %s", e.Index, e.Instr.Op, e.Reason)
	}

	return fmt.Sprintf("instr %d (%v): %s: r%d", e.Index, e.Instr.Op, e.Reason, e.Reg)
}
