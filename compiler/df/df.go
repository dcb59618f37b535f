package df

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind uint8

	// Demand means a kept instruction still needs Value.
	Demand struct {
		Value int
		Kind  Kind
	}

	// Demands is a multiset of pending demands.
	// Equal entries are not merged.
	Demands struct {
		d []Demand
	}
)

const (
	Reg Kind = iota
	Var
)

func (ds *Demands) Add(d Demand) {
	ds.d = append(ds.d, d)
}

// AddOnce adds d unless an equal demand is already pending.
func (ds *Demands) AddOnce(d Demand) bool {
	if ds.Find(d) >= 0 {
		return false
	}

	ds.Add(d)

	return true
}

// Find returns the index of the most recently added entry equal to d, or -1.
func (ds *Demands) Find(d Demand) int {
	for i := len(ds.d) - 1; i >= 0; i-- {
		if ds.d[i] == d {
			return i
		}
	}

	return -1
}

// Consume removes one entry equal to d.
func (ds *Demands) Consume(d Demand) bool {
	i := ds.Find(d)
	if i < 0 {
		return false
	}

	copy(ds.d[i:], ds.d[i+1:])
	ds.d = ds.d[:len(ds.d)-1]

	return true
}

func (ds *Demands) Len() int {
	return len(ds.d)
}

func (k Kind) String() string {
	switch k {
	case Reg:
		return "reg"
	case Var:
		return "var"
	}

	return "kind?"
}

func (d Demand) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyInt(b, "val", d.Value)
	b = e.AppendKeyString(b, "kind", d.Kind.String())

	return b
}

func (ds *Demands) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, len(ds.d))

	for _, d := range ds.d {
		b = d.TlogAppend(b)
	}

	return b
}
