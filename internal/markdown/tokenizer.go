package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/quire/internal/mathrender"
)

// Option configures a Tokenizer.
type Option func(*options)

type options struct {
	math       mathrender.Renderer
	extensions []goldmark.Extender
}

// WithMathRenderer sets the renderer used for math inside nodes that are
// passed through as opaque markup (footnote definitions).
func WithMathRenderer(r mathrender.Renderer) Option {
	return func(o *options) { o.math = r }
}

// WithExtensions adds goldmark extensions on top of the defaults.
func WithExtensions(exts ...goldmark.Extender) Option {
	return func(o *options) { o.extensions = append(o.extensions, exts...) }
}

// Tokenizer parses Markdown with goldmark (GFM, footnotes, $ math) and
// exposes the document as an event stream.
//
// Containers whose text the pipeline may rewrite (paragraphs, headings,
// block quotes, lists, emphasis, links, tables) become Start/End events.
// Leaves such as code, images and raw HTML are rendered by goldmark and
// passed along as KindHTML.
type Tokenizer struct {
	md goldmark.Markdown
}

// NewTokenizer builds a Tokenizer. It is safe for concurrent use.
func NewTokenizer(opts ...Option) *Tokenizer {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	exts := append([]goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		&mathExtension{math: o.math},
	}, o.extensions...)

	return &Tokenizer{md: goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Tokenize parses source and returns its event stream.
func (t *Tokenizer) Tokenize(source []byte) Stream {
	doc := t.md.Parser().Parse(text.NewReader(source))
	return func(yield func(Event) bool) {
		w := &walker{source: source, md: t.md, yield: yield}
		if w.children(doc) {
			w.flush()
		}
	}
}

type walker struct {
	source []byte
	md     goldmark.Markdown
	yield  func(Event) bool

	// pending merges adjacent text nodes into one Text event.
	pending strings.Builder
}

func (w *walker) flush() bool {
	if w.pending.Len() == 0 {
		return true
	}
	s := w.pending.String()
	w.pending.Reset()
	return w.yield(Text(s))
}

func (w *walker) emit(e Event) bool {
	if !w.flush() {
		return false
	}
	return w.yield(e)
}

func (w *walker) children(n ast.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if !w.node(c) {
			return false
		}
	}
	return true
}

func (w *walker) wrap(n ast.Node, start, end Event) bool {
	return w.emit(start) && w.children(n) && w.emit(end)
}

func (w *walker) node(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.Document, *ast.TextBlock:
		return w.children(n)
	case *ast.Paragraph:
		return w.wrap(n, Start(TagParagraph), End(TagParagraph))
	case *ast.Heading:
		return w.wrap(n, Heading(n.Level), HeadingEnd(n.Level))
	case *ast.Blockquote:
		return w.wrap(n, Start(TagBlockQuote), End(TagBlockQuote))
	case *ast.List:
		start := Event{Kind: KindStart, Tag: TagList, Ordered: n.IsOrdered(), Start: n.Start}
		end := Event{Kind: KindEnd, Tag: TagList, Ordered: n.IsOrdered()}
		return w.wrap(n, start, end)
	case *ast.ListItem:
		return w.wrap(n, Start(TagItem), End(TagItem))
	case *ast.Emphasis:
		tag := TagEmphasis
		if n.Level >= 2 {
			tag = TagStrong
		}
		return w.wrap(n, Start(tag), End(tag))
	case *east.Strikethrough:
		return w.wrap(n, Start(TagStrikethrough), End(TagStrikethrough))
	case *ast.Link:
		start := Event{Kind: KindStart, Tag: TagLink, Dest: string(n.Destination), Title: string(n.Title)}
		return w.wrap(n, start, End(TagLink))
	case *east.Table:
		return w.table(n)
	case *ast.Text:
		w.pending.Write(decode(n.Segment.Value(w.source)))
		switch {
		case n.HardLineBreak():
			return w.emit(Event{Kind: KindHardBreak})
		case n.SoftLineBreak():
			return w.emit(Event{Kind: KindSoftBreak})
		}
		return true
	case *ast.String:
		if n.IsCode() || n.IsRaw() {
			return w.emit(HTML(string(n.Value)))
		}
		w.pending.Write(n.Value)
		return true
	case *MathNode:
		return w.emit(Math(n.Mode, string(n.Expr)))
	default:
		return w.opaque(n)
	}
}

func (w *walker) table(t *east.Table) bool {
	if !w.emit(Start(TagTable)) {
		return false
	}
	body := false
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		switch row := c.(type) {
		case *east.TableHeader:
			if !w.emit(Start(TagTableHead)) || !w.cells(row, true) || !w.emit(End(TagTableHead)) {
				return false
			}
		case *east.TableRow:
			if !body {
				body = true
				if !w.emit(Start(TagTableBody)) {
					return false
				}
			}
			if !w.emit(Start(TagTableRow)) || !w.cells(row, false) || !w.emit(End(TagTableRow)) {
				return false
			}
		}
	}
	if body && !w.emit(End(TagTableBody)) {
		return false
	}
	return w.emit(End(TagTable))
}

func (w *walker) cells(row ast.Node, header bool) bool {
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*east.TableCell)
		if !ok {
			continue
		}
		align := ""
		if cell.Alignment != east.AlignNone {
			align = cell.Alignment.String()
		}
		start := Event{Kind: KindStart, Tag: TagTableCell, Align: align, Header: header}
		end := Event{Kind: KindEnd, Tag: TagTableCell, Header: header}
		if !w.wrap(cell, start, end) {
			return false
		}
	}
	return true
}

// opaque renders n and its subtree with goldmark's HTML renderer.
func (w *walker) opaque(n ast.Node) bool {
	var buf bytes.Buffer
	if err := w.md.Renderer().Render(&buf, w.source, n); err != nil {
		return w.emit(HTML("<!-- render error: " + err.Error() + " -->"))
	}
	if buf.Len() == 0 {
		return true
	}
	return w.emit(HTML(buf.String()))
}

// decode resolves backslash escapes and character references the way
// goldmark's own text writer does.
func decode(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}
