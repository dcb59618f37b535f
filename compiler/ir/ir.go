package ir

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	Op  uint8
	Reg int
	Var int

	Instr struct {
		Op     Op
		Field1 int
		Field2 int
		Field3 int
	}
)

const (
	_ Op = iota

	LOADI
	LOAD
	STORE
	ADD
	SUB
	MUL
	AND
	OR
	READ
	WRITE
)

// Empty fills instruction fields the opcode does not use.
const Empty = 0xFFFFF

const Vars = "abcdef"

var opNames = [...]string{
	LOADI: "LOADI",
	LOAD:  "LOAD",
	STORE: "STORE",
	ADD:   "ADD",
	SUB:   "SUB",
	MUL:   "MUL",
	AND:   "AND",
	OR:    "OR",
	READ:  "READ",
	WRITE: "WRITE",
}

func LoadI(dst Reg, v int) Instr {
	return Instr{Op: LOADI, Field1: int(dst), Field2: v, Field3: Empty}
}

func Load(dst Reg, v Var) Instr {
	return Instr{Op: LOAD, Field1: int(dst), Field2: int(v), Field3: Empty}
}

func Store(v Var, src Reg) Instr {
	return Instr{Op: STORE, Field1: int(v), Field2: int(src), Field3: Empty}
}

func Binary(op Op, dst, l, r Reg) Instr {
	if !op.Binary() {
		panic(op)
	}

	return Instr{Op: op, Field1: int(dst), Field2: int(l), Field3: int(r)}
}

func Read(v Var) Instr {
	return Instr{Op: READ, Field1: int(v), Field2: Empty, Field3: Empty}
}

func Write(v Var) Instr {
	return Instr{Op: WRITE, Field1: int(v), Field2: Empty, Field3: Empty}
}

func ParseOp(s string) (Op, bool) {
	for op, n := range opNames {
		if n != "" && n == s {
			return Op(op), true
		}
	}

	return 0, false
}

func (op Op) Valid() bool {
	return op >= LOADI && op <= WRITE
}

func (op Op) Binary() bool {
	switch op {
	case ADD, SUB, MUL, AND, OR:
		return true
	}

	return false
}

func (op Op) String() string {
	if !op.Valid() {
		return "OP?"
	}

	return opNames[op]
}

// Defines reports the register the instruction writes.
func (x Instr) Defines() (Reg, bool) {
	switch {
	case x.Op == LOADI, x.Op == LOAD, x.Op.Binary():
		return Reg(x.Field1), true
	}

	return 0, false
}

// Uses appends registers read by the instruction.
func (x Instr) Uses(rs []Reg) []Reg {
	switch {
	case x.Op == STORE:
		rs = append(rs, Reg(x.Field2))
	case x.Op.Binary():
		rs = append(rs, Reg(x.Field2), Reg(x.Field3))
	}

	return rs
}

func IsVar(c byte) bool {
	return c >= 'a' && c <= 'f'
}

func (v Var) Valid() bool {
	return v >= 0 && v < 256 && IsVar(byte(v))
}

func (v Var) String() string {
	if !v.Valid() {
		return "?"
	}

	return string(rune(v))
}

func (x Instr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	n := 2

	switch {
	case x.Op.Binary():
		n = 4
	case x.Op == LOADI, x.Op == LOAD, x.Op == STORE:
		n = 3
	}

	b = e.AppendMap(b, n)
	b = e.AppendKeyString(b, "op", x.Op.String())
	b = e.AppendKeyInt(b, "f1", x.Field1)

	if n > 2 {
		b = e.AppendKeyInt(b, "f2", x.Field2)
	}

	if n > 3 {
		b = e.AppendKeyInt(b, "f3", x.Field3)
	}

	return b
}
