package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/quire/internal/mathrender"
)

// KindMathNode is the goldmark node kind of an inline math span.
var KindMathNode = ast.NewNodeKind("Math")

// MathNode is a $...$ (inline) or $$...$$ (display) span.
type MathNode struct {
	ast.BaseInline
	Mode mathrender.Mode
	Expr []byte
}

// Kind implements ast.Node.
func (n *MathNode) Kind() ast.NodeKind { return KindMathNode }

// Dump implements ast.Node.
func (n *MathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Mode": n.Mode.String(),
		"Expr": string(n.Expr),
	}, nil)
}

type mathParser struct{}

func (p *mathParser) Trigger() []byte { return []byte{'$'} }

// Parse reads a math span. Inline spans must not start or end with a
// space so that prices like "$5 and $10" stay text; display spans may
// cover several lines of the same paragraph.
func (p *mathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	mode := mathrender.Inline
	fence := []byte("$")
	if len(line) > 1 && line[1] == '$' {
		mode = mathrender.Display
		fence = []byte("$$")
	}

	if mode == mathrender.Inline {
		rest := line[1:]
		end := bytes.IndexByte(rest, '$')
		if end <= 0 || rest[0] == ' ' || rest[end-1] == ' ' {
			return nil
		}
		block.Advance(end + 2)
		return &MathNode{Mode: mode, Expr: bytes.Clone(rest[:end])}
	}

	l, pos := block.Position()
	var expr []byte
	rest := line[len(fence):]
	advance := len(fence)
	for {
		if end := bytes.Index(rest, fence); end >= 0 {
			expr = append(expr, rest[:end]...)
			block.Advance(advance + end + len(fence))
			break
		}
		expr = append(expr, rest...)
		block.AdvanceLine()
		rest, _ = block.PeekLine()
		advance = 0
		if rest == nil {
			block.SetPosition(l, pos)
			return nil
		}
	}
	if len(bytes.TrimSpace(expr)) == 0 {
		block.SetPosition(l, pos)
		return nil
	}
	return &MathNode{Mode: mode, Expr: expr}
}

// mathHTMLRenderer renders MathNode when goldmark renders a subtree on its
// own, e.g. inside footnote definitions.
type mathHTMLRenderer struct {
	math mathrender.Renderer
}

func (r *mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathNode, r.render)
}

func (r *mathHTMLRenderer) render(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*MathNode)
	if r.math == nil {
		_, _ = w.Write(util.EscapeHTML(node.Expr))
		return ast.WalkSkipChildren, nil
	}
	out, _ := mathrender.Markup(r.math, string(node.Expr), node.Mode)
	_, _ = w.WriteString(out)
	return ast.WalkSkipChildren, nil
}

type mathExtension struct {
	math mathrender.Renderer
}

// Extend implements goldmark.Extender.
func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&mathParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathHTMLRenderer{math: e.math}, 500),
	))
}
