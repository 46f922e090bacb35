// Package casedoc reads compile cases written as markdown documents.
//
// A case starts at a heading "Case: <name>" and holds one ```tawa fence with
// the source, followed by either a ```qbe fence listing output lines that
// must appear in order, or an ```error fence with the expected diagnostic.
// Words after "tawa" in the fence info are option names.
package casedoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	FenceSource = "tawa"
	FenceQBE    = "qbe"
	FenceError  = "error"
)

type Case struct {
	Name    string
	Source  string
	Options []string
	// Expected holds the IR lines the output must contain, in order.
	Expected []string
	// Error is set when compilation must fail with this message.
	Error string
	Line  int
}

// HasOption reports whether the source fence named opt.
func (c Case) HasOption(opt string) bool {
	for _, o := range c.Options {
		if o == opt {
			return true
		}
	}
	return false
}

func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validate(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, "Case: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimPrefix(heading, "Case: "),
				Line: lineOf(n, markdown),
			}
		case *ast.FencedCodeBlock:
			info := fenceInfo(n, markdown)
			if len(info) == 0 {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, markdown)

			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a case", line, info[0])
			}

			content := fenceContent(n, markdown)
			switch info[0] {
			case FenceSource:
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: case %q has more than one source fence", line, current.Name)
				}
				current.Source = content
				current.Options = info[1:]
			case FenceQBE:
				for _, l := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
					if strings.TrimSpace(l) != "" {
						current.Expected = append(current.Expected, l)
					}
				}
			case FenceError:
				current.Error = strings.TrimSpace(content)
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence %q in case %q", line, info[0], current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Source == "" {
		return fmt.Errorf("line %d: case %q has no source fence", c.Line, c.Name)
	}
	if len(c.Expected) == 0 && c.Error == "" {
		return fmt.Errorf("line %d: case %q has neither a qbe nor an error fence", c.Line, c.Name)
	}
	if len(c.Expected) > 0 && c.Error != "" {
		return fmt.Errorf("line %d: case %q has both a qbe and an error fence", c.Line, c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

func fenceInfo(n *ast.FencedCodeBlock, source []byte) []string {
	if n.Info == nil {
		return nil
	}
	return strings.Fields(string(n.Info.Segment.Value(source)))
}

func fenceContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}

	return buf.String()
}

func lineOf(n ast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
