package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/slowlang/tinyl/compiler/format"
	"github.com/slowlang/tinyl/compiler/front"
	"github.com/slowlang/tinyl/compiler/ir"
	"github.com/slowlang/tinyl/compiler/opt"
)

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	seq, err := Compile(ctx, "", []byte("%a;%b;c=&3*ab;d=+c1;$d!"))
	require.NoError(t, err)

	text, err := format.Format(ctx, nil, seq)
	require.NoError(t, err)

	assert.Equal(t, `READ a
READ b
LOADI r1 #3
LOAD r2 a
LOAD r3 b
MUL r4 r2 r3
AND r5 r1 r4
STORE c r5
LOAD r6 c
LOADI r7 #1
ADD r8 r6 r7
STORE d r8
WRITE d
`, string(text))

	out, err := OptimizeText(ctx, text, nil)
	require.NoError(t, err)

	assert.Equal(t, string(text), string(out))
}

func TestBuild(t *testing.T) {
	seq, err := Build(context.Background(), "", []byte("a=5;b=3;$a!"), nil)
	require.NoError(t, err)

	assert.Equal(t, []ir.Instr{
		ir.LoadI(1, 5),
		ir.Store('a', 1),
		ir.Write('a'),
	}, seq.Instrs())
}

func TestCompileFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	name := filepath.Join(dir, "prog.tl")
	require.NoError(t, os.WriteFile(name, []byte("%a;\nb=|*+1+2a58;\n$b!\n"), 0o644))

	seq, err := CompileFile(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, 12, seq.Len())

	_, err = CompileFile(ctx, filepath.Join(dir, "missing.tl"))
	assert.Error(t, err)
}

func TestCompileSyntaxError(t *testing.T) {
	seq, err := Compile(context.Background(), "bad.tl", []byte("a+5!"))
	assert.Nil(t, seq)

	var uerr *front.UnexpectedError
	require.True(t, errors.As(err, &uerr), "err: %v", err)

	assert.Equal(t, 1, uerr.Pos)
	assert.Equal(t, front.Char('+'), uerr.Token)
	assert.Contains(t, err.Error(), "bad.tl:1:2")
}

func TestOptimizeEmpty(t *testing.T) {
	ctx := context.Background()

	_, err := OptimizeText(ctx, []byte("\n"), nil)
	assert.True(t, errors.Is(err, opt.ErrNoInstructions), "err: %v", err)

	_, err = OptimizeText(ctx, []byte("JUMP r1\n"), nil)

	var serr *format.SyntaxError
	assert.True(t, errors.As(err, &serr), "err: %v", err)
}

func TestOptimizeDedup(t *testing.T) {
	ctx := context.Background()

	seq, err := Build(ctx, "", []byte("a=1;a=2;b=a;c=a;$b;$c!"), &opt.Eliminator{DedupOperands: true})
	require.NoError(t, err)

	assert.Equal(t, 8, seq.Len())
}
