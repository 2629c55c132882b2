package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gfmext "github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(gfmext.GFM))

var codeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

// RenderMarkdown turns Markdown into styled terminal text.
func RenderMarkdown(src string) string {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	r := &mdRenderer{src: source}
	if err := ast.Walk(doc, r.walk); err != nil {
		return src
	}
	return strings.TrimRight(r.out.String(), "\n ")
}

type mdRenderer struct {
	src     []byte
	out     strings.Builder
	bold    int
	italic  int
	code    int
	strike  int
	heading int
	lists   int
}

func (r *mdRenderer) write(s string) {
	st := lipgloss.NewStyle()
	if r.bold > 0 || r.heading > 0 {
		st = st.Bold(true)
	}
	if r.italic > 0 {
		st = st.Italic(true)
	}
	if r.strike > 0 {
		st = st.Strikethrough(true)
	}
	if r.code > 0 {
		st = st.Foreground(lipgloss.Color("3"))
	}
	if r.heading > 0 {
		st = st.Foreground(lipgloss.Color("4"))
	}
	r.out.WriteString(st.Render(s))
}

func (r *mdRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.heading = node.Level
		} else {
			r.heading = 0
			r.out.WriteString("\n\n")
		}

	case *ast.Paragraph:
		if !entering {
			r.out.WriteString("\n")
			if _, inItem := node.Parent().(*ast.ListItem); !inItem {
				r.out.WriteString("\n")
			}
		}

	case *ast.TextBlock:
		if !entering {
			r.out.WriteString("\n")
		}

	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.src)))
			switch {
			case node.HardLineBreak():
				r.out.WriteString("\n")
			case node.SoftLineBreak():
				r.out.WriteString(" ")
			}
		}

	case *ast.String:
		if entering {
			r.write(string(node.Value))
		}

	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if node.Level >= 2 {
			r.bold += delta
		} else {
			r.italic += delta
		}

	case *east.Strikethrough:
		if entering {
			r.strike++
		} else {
			r.strike--
		}

	case *ast.CodeSpan:
		if entering {
			r.code++
		} else {
			r.code--
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				r.out.WriteString(codeStyle.Render("  " + strings.TrimRight(string(line.Value(r.src)), "\n")))
				r.out.WriteString("\n")
			}
			r.out.WriteString("\n")
		}
		return ast.WalkSkipChildren, nil

	case *ast.List:
		if entering {
			r.lists++
		} else {
			r.lists--
			if r.lists == 0 {
				r.out.WriteString("\n")
			}
		}

	case *ast.ListItem:
		if entering {
			r.out.WriteString(strings.Repeat("  ", max(r.lists-1, 0)))
			if list, ok := node.Parent().(*ast.List); ok && list.IsOrdered() {
				r.out.WriteString(fmt.Sprintf("%d. ", list.Start+indexOf(node)))
			} else {
				r.out.WriteString("• ")
			}
		}

	case *ast.Link:
		if !entering {
			r.out.WriteString(dimStyle.Render(" (" + string(node.Destination) + ")"))
		}

	case *ast.AutoLink:
		if entering {
			r.write(string(node.URL(r.src)))
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			r.out.WriteString(dimStyle.Render("────────") + "\n\n")
		}

	case *ast.Blockquote:
		if entering {
			r.italic++
			r.out.WriteString(dimStyle.Render("│ "))
		} else {
			r.italic--
		}

	case *east.TableCell:
		if !entering && node.NextSibling() != nil {
			r.out.WriteString(" │ ")
		}

	case *east.TableHeader, *east.TableRow:
		if !entering {
			r.out.WriteString("\n")
		}

	case *east.Table:
		if !entering {
			r.out.WriteString("\n")
		}
	}
	return ast.WalkContinue, nil
}

func indexOf(n ast.Node) int {
	i := 0
	for prev := n.PreviousSibling(); prev != nil; prev = prev.PreviousSibling() {
		i++
	}
	return i
}
