package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/tawaqbe/ast"
	"github.com/pontaoski/tawaqbe/codegen"
	"github.com/pontaoski/tawaqbe/config"
	"github.com/pontaoski/tawaqbe/lexer"
	"github.com/pontaoski/tawaqbe/parser"
	"github.com/pontaoski/tawaqbe/report"
	"github.com/pontaoski/tawaqbe/types"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

var buildFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write the IR to `FILE`",
	},
	&cli.StringFlag{
		Name:  "emit",
		Usage: "backend to use: qbe or llvm",
	},
	&cli.BoolFlag{
		Name:  "dump",
		Usage: "print the IR instead of writing it",
	},
	&cli.BoolFlag{
		Name:  "lexical-scoping",
		Usage: "let function bodies see enclosing variables",
	},
	&cli.BoolFlag{
		Name:  "left-associative",
		Usage: "group operators of equal precedence from the left",
	},
	&cli.BoolFlag{
		Name:  "trace",
		Usage: "print a stack trace with errors",
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "print progress",
	},
}

// driver holds what the commands share: the directory the module file is
// looked up in and the reporter for diagnostics.
type driver struct {
	dir    string
	report *report.Reporter
}

func (d *driver) fail(tag string, err error, source []byte, trace bool) error {
	d.report.Error(tag, err, source)
	if trace {
		tracerr.PrintSourceColor(err)
	}
	return cli.Exit("", exitFailure)
}

// options is the module file with command-line flags laid over it.
func (d *driver) options(c *cli.Context) (config.Options, error) {
	yml := filepath.Join(d.dir, config.YAMLFile)
	tml := filepath.Join(d.dir, config.TOMLFile)
	if _, err := os.Stat(yml); err == nil {
		if _, err := os.Stat(tml); err == nil {
			d.report.Warn("Config", fmt.Sprintf("both %s and %s found, using %s", config.YAMLFile, config.TOMLFile, config.YAMLFile))
		}
	}

	opts, err := config.Load(d.dir)
	if err != nil {
		return opts, err
	}

	if c.IsSet("output") {
		opts.Output = c.String("output")
	}
	if c.IsSet("emit") {
		opts.Emit = c.String("emit")
	}
	if c.IsSet("lexical-scoping") {
		opts.LexicalScoping = c.Bool("lexical-scoping")
	}
	if c.IsSet("left-associative") {
		opts.LeftAssociative = c.Bool("left-associative")
	}

	return opts, opts.Validate()
}

func lex(path string, source []byte) (types.Lines, error) {
	return lexer.NewLexer(bytes.NewReader(source), path).Lex()
}

func parse(path string, source []byte, opts parser.Options) (*ast.Program, error) {
	lines, err := lex(path, source)
	if err != nil {
		return nil, err
	}
	return parser.NewParser(lines, opts).Parse()
}

// read returns the source named by the first argument. A missing argument is
// a usage error, anything else has already been reported.
func (d *driver) read(c *cli.Context, trace bool) (string, []byte, error) {
	path := c.Args().First()
	if path == "" {
		return "", nil, cli.Exit("no input file provided", exitUsage)
	}

	source, err := ioutil.ReadFile(path)
	if err != nil {
		return path, nil, d.fail("I/O Error", tracerr.Wrap(err), nil, trace)
	}
	return path, source, nil
}

func (d *driver) build(c *cli.Context) error {
	trace := c.Bool("trace")
	d.report.Verbose = c.Bool("verbose")

	path, source, err := d.read(c, trace)
	if err != nil {
		return err
	}

	opts, err := d.options(c)
	if err != nil {
		return d.fail("Config Error", err, nil, trace)
	}

	prog, err := parse(path, source, opts.Parser())
	if err != nil {
		return d.fail("Compile Error", err, source, trace)
	}

	var out string
	switch opts.Emit {
	case config.EmitLLVM:
		out = codegen.LLVM(prog).String()
	default:
		out = codegen.QBE(prog)
	}

	if c.Bool("dump") {
		fmt.Fprint(c.App.Writer, out)
		return nil
	}

	dest := opts.OutputPath()
	if !c.IsSet("output") && !filepath.IsAbs(dest) {
		dest = filepath.Join(d.dir, dest)
	}
	if err := ioutil.WriteFile(dest, []byte(out), 0644); err != nil {
		return d.fail("I/O Error", tracerr.Wrap(err), nil, trace)
	}

	d.report.Info("Compiled", fmt.Sprintf("%s -> %s", path, dest))
	return nil
}

// dumpNode is a node without its scope pointer, which would drag the whole
// symbol table into the output.
type dumpNode struct {
	ID       int
	Next     int
	Location string
	Scope    string
	Kind     ast.NodeKind
}

func flatten(prog *ast.Program) []dumpNode {
	var nodes []dumpNode
	for i := 0; i < prog.Arena.Len(); i++ {
		n := prog.Arena.Node(i)
		nodes = append(nodes, dumpNode{
			ID:       n.ID,
			Next:     n.Next,
			Location: n.Location.String(),
			Scope:    n.Scope.Kind.String(),
			Kind:     n.Kind,
		})
	}
	return nodes
}

func newApp(dir string, r *report.Reporter) *cli.App {
	d := &driver{dir: dir, report: r}

	return &cli.App{
		Name:      "tawaqbe",
		Usage:     "compile tawa source to QBE IR",
		ArgsUsage: "<file>",
		Flags:     buildFlags,
		Action:    d.build,
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			if exit, ok := err.(cli.ExitCoder); ok {
				if msg := exit.Error(); msg != "" {
					r.Error("Usage Error", err, nil)
				}
				cli.OsExiter(exit.ExitCode())
				return
			}
			r.Error("Error", err, nil)
			cli.OsExiter(exitFailure)
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "compile a file",
				ArgsUsage: "<file>",
				Flags:     buildFlags,
				Action:    d.build,
			},
			{
				Name:      "ast",
				Usage:     "print the parsed program",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "lexical-scoping"},
					&cli.BoolFlag{Name: "left-associative"},
				},
				Action: func(c *cli.Context) error {
					path, source, err := d.read(c, false)
					if err != nil {
						return err
					}

					prog, err := parse(path, source, parser.Options{
						LexicalScoping:  c.Bool("lexical-scoping"),
						LeftAssociative: c.Bool("left-associative"),
					})
					if err != nil {
						return d.fail("Compile Error", err, source, false)
					}

					fmt.Fprintln(c.App.Writer, repr.String(flatten(prog), repr.Indent("  ")))
					return nil
				},
			},
			{
				Name:      "tokens",
				Usage:     "print the tokens of a file, line by line",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					path, source, err := d.read(c, false)
					if err != nil {
						return err
					}

					lines, err := lex(path, source)
					if err != nil {
						return d.fail("Compile Error", err, source, false)
					}

					fmt.Fprintln(c.App.Writer, repr.String(lines, repr.Indent("  ")))
					return nil
				},
			},
			{
				Name:      "init",
				Usage:     "write a module file",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("no module name provided", exitUsage)
					}
					if err := config.Init(d.dir, name); err != nil {
						return d.fail("I/O Error", err, nil, false)
					}
					d.report.Info("Created", config.YAMLFile)
					return nil
				},
			},
		},
	}
}

func main() {
	app := newApp(".", report.New(false))
	if err := app.Run(os.Args); err != nil {
		os.Exit(exitUsage)
	}
}
