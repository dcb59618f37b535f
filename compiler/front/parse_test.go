package front

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/slowlang/tinyl/compiler/ir"
)

func compile(t testing.TB, text string) *ir.Seq {
	t.Helper()

	s := New()
	s.AddFile(context.Background(), "", []byte(text))

	seq, err := s.Compile(context.Background())
	require.NoError(t, err, "text: %q", text)

	return seq
}

func TestCompileReadAndLogic(t *testing.T) {
	seq := compile(t, "%a;%b;c=&3*ab;d=+c1;$d!")

	assert.Equal(t, []ir.Instr{
		ir.Read('a'),
		ir.Read('b'),
		ir.LoadI(1, 3),
		ir.Load(2, 'a'),
		ir.Load(3, 'b'),
		ir.Binary(ir.MUL, 4, 2, 3),
		ir.Binary(ir.AND, 5, 1, 4),
		ir.Store('c', 5),
		ir.Load(6, 'c'),
		ir.LoadI(7, 1),
		ir.Binary(ir.ADD, 8, 6, 7),
		ir.Store('d', 8),
		ir.Write('d'),
	}, seq.Instrs())
}

func TestCompileNestedPrefix(t *testing.T) {
	seq := compile(t, "%a;b=|*+1+2a58;$b!")

	assert.Equal(t, []ir.Instr{
		ir.Read('a'),
		ir.LoadI(1, 1),
		ir.LoadI(2, 2),
		ir.Load(3, 'a'),
		ir.Binary(ir.ADD, 4, 2, 3),
		ir.Binary(ir.ADD, 5, 1, 4),
		ir.LoadI(6, 5),
		ir.Binary(ir.MUL, 7, 5, 6),
		ir.LoadI(8, 8),
		ir.Binary(ir.OR, 9, 7, 8),
		ir.Store('b', 9),
		ir.Write('b'),
	}, seq.Instrs())
}

func TestCompileAllOps(t *testing.T) {
	seq := compile(t, "e=-9f;f=|&01*23!")

	ops := []ir.Op{}

	seq.Range(func(_ int, x ir.Instr) bool {
		ops = append(ops, x.Op)
		return true
	})

	assert.Equal(t, []ir.Op{
		ir.LOADI, ir.LOAD, ir.SUB, ir.STORE,
		ir.LOADI, ir.LOADI, ir.AND, ir.LOADI, ir.LOADI, ir.MUL, ir.OR, ir.STORE,
	}, ops)
}

func TestCompileWhitespace(t *testing.T) {
	seq := compile(t, " a =\t5 ;\n\r\v\f $ a\n!\n")

	assert.Equal(t, []ir.Instr{
		ir.LoadI(1, 5),
		ir.Store('a', 1),
		ir.Write('a'),
	}, seq.Instrs())
}

func TestCompileTrailingInputIgnored(t *testing.T) {
	seq := compile(t, "$a!garbage;")

	assert.Equal(t, []ir.Instr{ir.Write('a')}, seq.Instrs())
}

func TestCompileTwice(t *testing.T) {
	ctx := context.Background()

	s := New()
	s.AddFile(ctx, "x.tl", []byte("a=+12;$a!"))

	first, err := s.Compile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Registers())

	second, err := s.Compile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Registers())

	assert.Equal(t, first.Instrs(), second.Instrs())
}

func TestSyntaxErrors(t *testing.T) {
	for _, tc := range []struct {
		text  string
		pos   int
		token Token
		want  []Token
	}{
		{"a+5!", 1, Char('+'), []Token{Char('=')}},
		{"!", 0, Char('!'), []Token{Variable, Char('%'), Char('$')}},
		{"", 0, nil, []Token{Variable, Char('%'), Char('$')}},
		{"a=5", 3, nil, []Token{Char('!')}},
		{"a=5;b=3", 7, nil, []Token{Char('!')}},
		{"a=", 2, nil, []Token{Expression}},
		{"%g!", 1, Char('g'), []Token{Variable}},
		{"$1!", 1, Char('1'), []Token{Variable}},
		{"a=+1!", 4, Char('!'), []Token{Expression}},
		{"a=x!", 2, Char('x'), []Token{Expression}},
		{"$a;!", 3, Char('!'), []Token{Variable, Char('%'), Char('$')}},
		{"$a$b!", 2, Char('$'), []Token{Char('!')}},
		{"a=12!", 3, Char('2'), []Token{Char('!')}},
	} {
		t.Run(tc.text, func(t *testing.T) {
			ctx := context.Background()

			s := New()
			s.AddFile(ctx, "", []byte(tc.text))

			seq, err := s.Compile(ctx)
			assert.Nil(t, seq)

			var uerr *UnexpectedError
			require.True(t, errors.As(err, &uerr), "err: %v", err)

			assert.Equal(t, tc.pos, uerr.Pos)
			assert.Equal(t, tc.token, uerr.Token)
			assert.Equal(t, tc.want, uerr.Want)
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	ctx := context.Background()

	s := New()
	s.AddFile(ctx, "prog.tl", []byte("%a;\n  b+5!"))

	_, err := s.Compile(ctx)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "prog.tl:2:4")
	assert.Contains(t, err.Error(), "unexpected token '+', want: '='")

	s = New()
	s.AddFile(ctx, "", []byte("a=*1"))

	_, err = s.Compile(ctx)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "<input>:1:5")
	assert.Contains(t, err.Error(), "MUL right")
	assert.Contains(t, err.Error(), "unexpected end of input, want: expression")
}

func TestWhereMultipleFiles(t *testing.T) {
	ctx := context.Background()

	s := New()
	s.AddFile(ctx, "one", []byte("%a;\n"))
	s.AddFile(ctx, "two", []byte("\n\n $a ?"))

	assert.Equal(t, "one:1:1", s.Where(0))
	assert.Equal(t, "two:3:2", s.Where(3))
	assert.Equal(t, "two:3:5", s.Where(5))
	assert.Equal(t, "two:3:6", s.Where(6))
}

func TestRegistersIncreasing(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for n := 0; n < 200; n++ {
		text := genProgram(r, 1+r.Intn(8))

		seq := compile(t, text)

		require.NoError(t, ir.Check(seq), "text: %q", text)

		next := ir.Reg(1)

		seq.Range(func(_ int, x ir.Instr) bool {
			if d, ok := x.Defines(); ok {
				assert.Equal(t, next, d, "text: %q", text)
				next++
			}

			return true
		})
	}
}

func genProgram(r *rand.Rand, stmts int) string {
	var b strings.Builder

	for i := 0; i < stmts; i++ {
		if i != 0 {
			b.WriteByte(';')
		}

		v := ir.Vars[r.Intn(len(ir.Vars))]

		switch r.Intn(4) {
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
