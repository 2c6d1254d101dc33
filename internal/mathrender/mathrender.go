// Package mathrender turns TeX expressions into page markup.
package mathrender

import (
	"fmt"
	"html"
	"strings"

	"github.com/starford/quire/internal/apperr"
)

// Mode selects inline or display typesetting.
type Mode int

const (
	Inline Mode = iota
	Display
)

func (m Mode) String() string {
	if m == Display {
		return "display"
	}
	return "inline"
}

// Renderer renders one expression. Errors wrap apperr.ErrMathRender.
type Renderer interface {
	Render(expr string, mode Mode) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(expr string, mode Mode) (string, error)

// Render calls f.
func (f RendererFunc) Render(expr string, mode Mode) (string, error) {
	return f(expr, mode)
}

// ErrorMarkup is the visible marker that replaces an expression that
// failed to render.
func ErrorMarkup(err error) string {
	return `<span class="math-error" style="color: red">Maths Error: ` + html.EscapeString(err.Error()) + `</span>`
}

// Markup renders expr with r and falls back to ErrorMarkup on failure.
// The error is returned alongside the fallback so callers can report it.
func Markup(r Renderer, expr string, mode Mode) (string, error) {
	out, err := r.Render(expr, mode)
	if err != nil {
		return ErrorMarkup(err), err
	}
	return out, nil
}

// Delimited validates TeX and wraps it in the \( \) and \[ \] delimiters
// picked up by KaTeX auto-render in the browser.
type Delimited struct{}

// Render implements Renderer.
func (Delimited) Render(expr string, mode Mode) (string, error) {
	if err := Validate(expr); err != nil {
		return "", err
	}
	escaped := html.EscapeString(strings.TrimSpace(expr))
	if mode == Display {
		return `<span class="math math-display">\[` + escaped + `\]</span>`, nil
	}
	return `<span class="math math-inline">\(` + escaped + `\)</span>`, nil
}

// Validate checks the structure a typesetter would reject outright: empty
// input, unbalanced braces, mismatched environments and \left/\right pairs.
func Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("%w: empty expression", apperr.ErrMathRender)
	}

	depth := 0
	var envs []string
	lefts := 0
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected '}' at position %d", apperr.ErrMathRender, i)
			}
		case '\\':
			name := command(expr[i+1:])
			if name == "" {
				// escaped symbol such as \{ or \\
				i++
				continue
			}
			i += len(name)
			switch name {
			case "begin", "end":
				env, n := braced(expr[i+1:])
				if env == "" {
					return fmt.Errorf("%w: \\%s without environment name", apperr.ErrMathRender, name)
				}
				i += n
				if name == "begin" {
					envs = append(envs, env)
					continue
				}
				if len(envs) == 0 || envs[len(envs)-1] != env {
					return fmt.Errorf("%w: \\end{%s} does not match an open environment", apperr.ErrMathRender, env)
				}
				envs = envs[:len(envs)-1]
			case "left":
				lefts++
			case "right":
				lefts--
				if lefts < 0 {
					return fmt.Errorf("%w: \\right without matching \\left", apperr.ErrMathRender)
				}
			}
		}
	}

	switch {
	case depth > 0:
		return fmt.Errorf("%w: expected '}', got end of input", apperr.ErrMathRender)
	case len(envs) > 0:
		return fmt.Errorf("%w: missing \\end{%s}", apperr.ErrMathRender, envs[len(envs)-1])
	case lefts > 0:
		return fmt.Errorf("%w: \\left without matching \\right", apperr.ErrMathRender)
	}
	return nil
}

// command returns the control word at the start of s, if any.
func command(s string) string {
	n := 0
	for n < len(s) && (s[n] >= 'a' && s[n] <= 'z' || s[n] >= 'A' && s[n] <= 'Z') {
		n++
	}
	return s[:n]
}

// braced reads "{name}" at the start of s and returns name and the number
// of bytes consumed.
func braced(s string) (string, int) {
	if !strings.HasPrefix(s, "{") {
		return "", 0
	}
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return "", 0
	}
	return s[1:end], end + 1
}
