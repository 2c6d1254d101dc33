// Package transform rewrites a document's event stream in a single pass:
// headings gain anchors, tagged block quotes become admonitions, and math
// is replaced by rendered markup.
package transform

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/starford/quire/internal/markdown"
	"github.com/starford/quire/internal/mathrender"
)

// DefaultLabels maps admonition tags to their display labels.
var DefaultLabels = map[string]string{
	"def":   "Definition",
	"prop":  "Proposition",
	"proof": "Proof",
	"ex":    "Example",
	"thm":   "Theorem",
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger used to report math failures.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transformer) { t.logger = l }
}

// WithLabels replaces the admonition label table. Keys are matched
// case-insensitively.
func WithLabels(labels map[string]string) Option {
	return func(t *Transformer) {
		t.labels = make(map[string]string, len(labels))
		for k, v := range labels {
			t.labels[strings.ToLower(k)] = v
		}
	}
}

// WithMathErrorHook registers fn to be called for every expression that
// fails to render.
func WithMathErrorHook(fn func(expr string, err error)) Option {
	return func(t *Transformer) { t.onMathError = fn }
}

// Transformer holds the immutable configuration of the rewrite. Each call
// to Transform starts from fresh state, so one Transformer may serve any
// number of documents, concurrently.
type Transformer struct {
	math        mathrender.Renderer
	labels      map[string]string
	logger      *slog.Logger
	onMathError func(expr string, err error)
}

// New builds a Transformer around a math renderer.
func New(math mathrender.Renderer, opts ...Option) *Transformer {
	t := &Transformer{
		math:   math,
		labels: DefaultLabels,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// state is the per-document fold state.
type state struct {
	// headingLevel is the level of a heading whose start was swallowed and
	// whose text has not arrived yet; 0 when none is pending.
	headingLevel int
	// quoteOpen is set by a block quote start and cleared by the first text
	// inside it.
	quoteOpen bool
}

// Transform returns the rewritten stream. in is consumed once, in order.
func (t *Transformer) Transform(in markdown.Stream) markdown.Stream {
	return func(yield func(markdown.Event) bool) {
		var st state
		for e := range in {
			for _, out := range t.step(&st, e) {
				if !yield(out) {
					return
				}
			}
		}
	}
}

// step applies the first matching rule to e.
func (t *Transformer) step(st *state, e markdown.Event) []markdown.Event {
	switch {
	case e.Kind == markdown.KindMath:
		return []markdown.Event{markdown.HTML(t.renderMath(e))}

	case e.Kind == markdown.KindStart && e.Tag == markdown.TagHeading:
		st.headingLevel = e.Level
		return nil

	case e.Kind == markdown.KindStart && e.Tag == markdown.TagBlockQuote:
		st.quoteOpen = true
		return nil

	case e.Kind == markdown.KindEnd && e.Tag == markdown.TagBlockQuote:
		return []markdown.Event{e}

	case e.Kind == markdown.KindText && st.quoteOpen:
		st.quoteOpen = false
		return t.quote(e.Text)

	case e.Kind == markdown.KindText && st.headingLevel > 0:
		level := st.headingLevel
		st.headingLevel = 0
		return []markdown.Event{markdown.HTML(anchoredHeading(level, e.Text))}
	}
	return []markdown.Event{e}
}

func (t *Transformer) renderMath(e markdown.Event) string {
	out, err := mathrender.Markup(t.math, e.Text, e.Math)
	if err != nil {
		t.logger.Warn("math render failed",
			slog.String("mode", e.Math.String()),
			slog.String("expression", e.Text),
			slog.String("error", err.Error()))
		if t.onMathError != nil {
			t.onMathError(e.Text, err)
		}
	}
	return out
}

// quote handles the first text of a block quote.
func (t *Transformer) quote(text string) []markdown.Event {
	left, right, found := strings.Cut(text, ":")
	if !found || !strings.HasPrefix(left, "#") {
		return []markdown.Event{markdown.HTML("<blockquote>"), markdown.Text(text)}
	}

	tag := left[1:]
	label, ok := t.labels[strings.ToLower(tag)]
	if !ok {
		label = tag
	}

	right = strings.TrimSpace(right)
	subtitle, isSubtitle := parenthesized(right)

	var b strings.Builder
	fmt.Fprintf(&b, `<blockquote class="%s"><h1>%s`, html.EscapeString(strings.ToLower(tag)), html.EscapeString(label))
	if isSubtitle {
		fmt.Fprintf(&b, ` <small>(%s)</small>`, html.EscapeString(subtitle))
	}
	b.WriteString("</h1>")

	out := []markdown.Event{markdown.HTML(b.String())}
	if !isSubtitle {
		out = append(out, markdown.Text(right))
	}
	return out
}

// parenthesized reports whether s is wrapped in parentheses and returns
// the interior.
func parenthesized(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// Slug turns heading text into an anchor id: trimmed, lowercased, spaces
// replaced by hyphens. No other normalisation is applied.
func Slug(text string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "-")
}

// anchoredHeading opens a heading that links to itself. The closing tag
// comes from the heading's End event.
func anchoredHeading(level int, text string) string {
	slug := html.EscapeString(Slug(text))
	return fmt.Sprintf(`<h%d id="%s"><a class="header" href="#%s">%s</a>`, level, slug, slug, html.EscapeString(text))
}
