package front

import (
	"bytes"
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/ir"
)

type (
	// State compiles one tinyL program. It owns the register counter,
	// so each compilation numbers registers from 1.
	State struct {
		b   []byte // tokens of all files, whitespace stripped
		src []int  // b index -> text index

		text  []byte // all files concatenated
		files []file

		reg ir.Reg
		seq *ir.Seq
	}

	file struct {
		Name string
		Base int
	}
)

func New() *State {
	return &State{}
}

func (s *State) AddFile(ctx context.Context, name string, text []byte) {
	f := file{
		Name: name,
		Base: len(s.text),
	}

	for j, c := range text {
		if SpaceAll.Is(c) {
			continue
		}

		s.b = append(s.b, c)
		s.src = append(s.src, f.Base+j)
	}

	s.text = append(s.text, text...)
	s.files = append(s.files, f)

	tlog.SpanFromContext(ctx).V("front").Printw("add file", "name", name, "size", len(text), "tokens", len(s.b))
}

// Compile parses the program and returns the generated code.
// Nothing is returned on a syntax error.
func (s *State) Compile(ctx context.Context) (seq *ir.Seq, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: compile", "tokens", len(s.b))
	defer tr.Finish("err", &err)

	s.reg = 0
	s.seq = ir.NewSeq()

	defer func() {
		s.seq = nil
	}()

	i, err := s.parseProgram(ctx, 0)
	if err != nil {
		return nil, errors.Wrap(err, "%v", s.Where(i))
	}

	if i != len(s.b) {
		tr.Printw("input after end of program ignored", "pos", s.Where(i), "tokens", len(s.b)-i)
	}

	if tr.If("dump_ir") {
		s.seq.Range(func(i int, x ir.Instr) bool {
			tr.Printw("code", "i", i, "instr", x)
			return true
		})
	}

	return s.seq, nil
}

// Registers returns the number of registers allocated by the last compilation.
func (s *State) Registers() int {
	return int(s.reg)
}

// Where maps a token position to file:line:col in the unstripped source text.
func (s *State) Where(pos int) string {
	off := len(s.text)
	if pos >= 0 && pos < len(s.src) {
		off = s.src[pos]
	}

	if len(s.files) == 0 {
		return fmt.Sprintf("pos %d", pos)
	}

	f := s.files[0]
	end := len(s.text)

	for j, ff := range s.files {
		if ff.Base > off {
			end = ff.Base
			break
		}

		f = s.files[j]
	}

	if off > end {
		off = end
	}

	pre := s.text[f.Base:off]

	line := 1 + bytes.Count(pre, []byte{'\n'})
	col := 1 + len(pre)

	if nl := bytes.LastIndexByte(pre, '\n'); nl >= 0 {
		col = len(pre) - nl
	}

	name := f.Name
	if name == "" {
		name = "<input>"
	}

	return fmt.Sprintf("%s:%d:%d", name, line, col)
}
