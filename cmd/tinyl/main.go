package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tebeka/atexit"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tinyl/compiler"
	"github.com/slowlang/tinyl/compiler/format"
	"github.com/slowlang/tinyl/compiler/ir"
	"github.com/slowlang/tinyl/compiler/opt"
)

const (
	defaultOutput = "tinyL.out"

	dedupHelp = "skip operand demands already pending, like the classic tinyL optimizer (may remove stores the default keeps)"
)

func main() {
	err := cli.Run(newApp(), os.Args, os.Environ())

	atexit.Exit(exitCode(err))
}

func newApp() *cli.Command {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile tinyL source into IR",
		Usage:       "<file>",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", defaultOutput, "output file"),
			cli.NewFlag("table", false, "print IR table to stdout"),
			cli.NewFlag("check", false, "verify register definitions"),
		},
	}

	optimizeCmd := &cli.Command{
		Name:        "optimize",
		Description: "eliminate dead code from IR",
		Action:      optimizeAct,
		Flags: []*cli.Flag{
			cli.NewFlag("input,i", "-", "input IR file"),
			cli.NewFlag("output,o", "-", "output IR file"),
			cli.NewFlag("dedup-operands", false, dedupHelp),
			cli.NewFlag("table", false, "print IR table to stderr"),
			cli.NewFlag("check", false, "verify register definitions of the input"),
		},
	}

	buildCmd := &cli.Command{
		Name:        "build",
		Description: "compile tinyL source and eliminate dead code",
		Usage:       "<file>",
		Action:      buildAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "-", "output file"),
			cli.NewFlag("dedup-operands", false, dedupHelp),
		},
	}

	app := &cli.Command{
		Name:        "tinyl",
		Description: "tinyl is a tinyL compiler and dead code eliminator",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			compileCmd,
			optimizeCmd,
			buildCmd,
		},
	}

	return app
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, opt.ErrNoInstructions):
		tlog.Printw("no instructions", "", tlog.Warn)
	default:
		tlog.Printw("fatal", "err", err, "", tlog.Error)
	}

	return 1
}

func before(c *cli.Command) error {
	if v := c.String("verbosity"); v != "" {
		tlog.SetVerbosity(v)
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 1 {
		return errors.New("expected exactly one source file, got %d", len(c.Args))
	}

	name := c.Args[0]

	seq, err := compiler.CompileFile(ctx, name)
	if err != nil {
		return errors.Wrap(err, "compile %v", name)
	}

	if c.Bool("check") {
		if err = ir.Check(seq); err != nil {
			return errors.Wrap(err, "check")
		}
	}

	b, err := format.Format(ctx, nil, seq)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	out := c.String("output")

	err = writeOutput(out, b)
	if err != nil {
		return err
	}

	if c.Bool("table") {
		fmt.Println(format.Table(name, seq))
	}

	tlog.Printw("code written", "file", out, "instrs", seq.Len())

	return nil
}

func optimizeAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	in := c.String("input")

	text, err := readInput(in)
	if err != nil {
		return err
	}

	seq, err := format.Parse(ctx, text)
	if err != nil {
		return errors.Wrap(err, "read ir %v", in)
	}

	if c.Bool("check") {
		if err = ir.Check(seq); err != nil {
			return errors.Wrap(err, "check")
		}
	}

	e := &opt.Eliminator{
		DedupOperands: c.Bool("dedup-operands"),
	}

	seq, err = compiler.Optimize(ctx, seq, e)
	if err != nil {
		return err
	}

	b, err := format.Format(ctx, nil, seq)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	if c.Bool("table") {
		fmt.Fprintln(os.Stderr, format.Table("optimized", seq))
	}

	return writeOutput(c.String("output"), b)
}

func buildAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 1 {
		return errors.New("expected exactly one source file, got %d", len(c.Args))
	}

	name := c.Args[0]

	text, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read file")
	}

	e := &opt.Eliminator{
		DedupOperands: c.Bool("dedup-operands"),
	}

	seq, err := compiler.Build(ctx, name, text, e)
	if err != nil {
		return errors.Wrap(err, "build %v", name)
	}

	b, err := format.Format(ctx, nil, seq)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	return writeOutput(c.String("output"), b)
}

func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "read stdin")
		}

		return b, nil
	}

	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return b, nil
}

// writeOutput creates the file only once there is something to write.
// A partially written file is removed when the process exits on failure.
func writeOutput(name string, b []byte) (err error) {
	if name == "" || name == "-" {
		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write stdout")
		}

		return nil
	}

	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "open output file")
	}

	cleanup := atexit.Register(func() {
		_ = os.Remove(name)
	})

	_, err = f.Write(b)

	if e := f.Close(); err == nil {
		err = e
	}

	if err != nil {
		return errors.Wrap(err, "write %v", name)
	}

	_ = cleanup.Cancel()

	return nil
}
