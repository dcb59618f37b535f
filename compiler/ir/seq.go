package ir

import (
	"github.com/slowlang/tinyl/compiler/set"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Seq is an ordered instruction sequence stored in an arena.
	// Slot indexes are stable: removing an instruction only relinks
	// its neighbours.
	Seq struct {
		code []Instr
		prev []int
		next []int

		head, tail int

		live set.Bits[int]
		n    int
	}
)

// None is the index past either end of a sequence.
const None = -1

func NewSeq(code ...Instr) *Seq {
	s := &Seq{
		head: None,
		tail: None,
	}

	for _, x := range code {
		s.Append(x)
	}

	return s
}

func (s *Seq) Append(x Instr) int {
	if len(s.code) == 0 {
		s.head, s.tail = None, None
	}

	i := len(s.code)

	s.code = append(s.code, x)
	s.prev = append(s.prev, s.tail)
	s.next = append(s.next, None)

	if s.tail != None {
		s.next[s.tail] = i
	} else {
		s.head = i
	}

	s.tail = i
	s.live.Set(i)
	s.n++

	return i
}

// Remove unlinks slot i. Removing a dead slot is a no-op.
func (s *Seq) Remove(i int) {
	if !s.Live(i) {
		return
	}

	p, n := s.prev[i], s.next[i]

	if p != None {
		s.next[p] = n
	} else {
		s.head = n
	}

	if n != None {
		s.prev[n] = p
	} else {
		s.tail = p
	}

	s.prev[i], s.next[i] = None, None
	s.code[i] = Instr{}

	s.live.Clear(i)
	s.n--
}

func (s *Seq) Live(i int) bool {
	return i >= 0 && i < len(s.code) && s.live.IsSet(i)
}

func (s *Seq) At(i int) Instr {
	return s.code[i]
}

func (s *Seq) First() int {
	if s.n == 0 {
		return None
	}

	return s.head
}

func (s *Seq) Last() int {
	if s.n == 0 {
		return None
	}

	return s.tail
}

func (s *Seq) Next(i int) int { return s.next[i] }
func (s *Seq) Prev(i int) int { return s.prev[i] }

func (s *Seq) Len() int {
	if s == nil {
		return 0
	}

	return s.n
}

// Range visits live instructions first to last until f returns false.
func (s *Seq) Range(f func(i int, x Instr) bool) {
	for i := s.First(); i != None; i = s.next[i] {
		if !f(i, s.code[i]) {
			return
		}
	}
}

// RangeBack visits live instructions last to first until f returns false.
// f may remove the slot it is given.
func (s *Seq) RangeBack(f func(i int, x Instr) bool) {
	for i := s.Last(); i != None; {
		p := s.prev[i]

		if !f(i, s.code[i]) {
			return
		}

		i = p
	}
}

func (s *Seq) Instrs() []Instr {
	r := make([]Instr, 0, s.Len())

	s.Range(func(_ int, x Instr) bool {
		r = append(r, x)
		return true
	})

	return r
}

func (s *Seq) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(_ int, x Instr) bool {
		b = x.TlogAppend(b)
		return true
	})

	b = e.AppendBreak(b)

	return b
}
