package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler/format"
	"github.com/slowlang/tinyl/compiler/front"
	"github.com/slowlang/tinyl/compiler/ir"
	"github.com/slowlang/tinyl/compiler/opt"
)

func CompileFile(ctx context.Context, name string) (*ir.Seq, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

func Compile(ctx context.Context, name string, text []byte) (*ir.Seq, error) {
	st := front.New()

	st.AddFile(ctx, name, text)

	seq, err := st.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	return seq, nil
}

// Optimize removes dead code from seq in place.
// e may be nil for the default eliminator.
func Optimize(ctx context.Context, seq *ir.Seq, e *opt.Eliminator) (*ir.Seq, error) {
	if e == nil {
		e = &opt.Eliminator{}
	}

	st, err := e.Eliminate(ctx, seq)
	if err != nil {
		return nil, errors.Wrap(err, "eliminate dead code")
	}

	tlog.SpanFromContext(ctx).V("opt").Printw("optimized", "kept", st.Kept, "removed", st.Removed, "leftover", st.Leftover)

	return seq, nil
}

// Build compiles text and optimizes the result.
func Build(ctx context.Context, name string, text []byte, e *opt.Eliminator) (*ir.Seq, error) {
	seq, err := Compile(ctx, name, text)
	if err != nil {
		return nil, err
	}

	return Optimize(ctx, seq, e)
}

// OptimizeText reads IR text, optimizes it and returns it as text.
func OptimizeText(ctx context.Context, text []byte, e *opt.Eliminator) ([]byte, error) {
	seq, err := format.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "read ir")
	}

	seq, err = Optimize(ctx, seq, e)
	if err != nil {
		return nil, err
	}

	return format.Format(ctx, nil, seq)
}
