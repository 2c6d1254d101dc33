package mathrender

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/quire/internal/apperr"
)

func TestDelimited(t *testing.T) {
	var r Delimited
	got, err := r.Render(" a < b ", Inline)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := `<span class="math math-inline">\(a &lt; b\)</span>`; got != want {
		t.Errorf("inline = %q, want %q", got, want)
	}
	got, _ = r.Render(`\sum_{i=1}^n i`, Display)
	if want := `<span class="math math-display">\[\sum_{i=1}^n i\]</span>`; got != want {
		t.Errorf("display = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		expr string
		ok   bool
	}{
		{`x^2`, true},
		{`\frac{1}{2}`, true},
		{`\{ x \}`, true},
		{`a \\ b`, true},
		{`\begin{pmatrix} 1 \\ 2 \end{pmatrix}`, true},
		{`\left( x \right)`, true},
		{``, false},
		{`   `, false},
		{`\frac{1`, false},
		{`x}`, false},
		{`\begin{align} x \end{matrix}`, false},
		{`\begin{align} x`, false},
		{`\begin x`, false},
		{`\left( x`, false},
		{`x \right)`, false},
	}
	for _, tc := range cases {
		err := Validate(tc.expr)
		if tc.ok && err != nil {
			t.Errorf("Validate(%q) = %v, want nil", tc.expr, err)
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("Validate(%q) = nil, want error", tc.expr)
			} else if !errors.Is(err, apperr.ErrMathRender) {
				t.Errorf("Validate(%q) error kind = %v", tc.expr, err)
			}
		}
	}
}

func TestMarkupFallback(t *testing.T) {
	failing := RendererFunc(func(string, Mode) (string, error) {
		return "", errors.New(`bad <input>`)
	})
	got, err := Markup(failing, "x", Inline)
	if err == nil {
		t.Fatal("expected error")
	}
	want := `<span class="math-error" style="color: red">Maths Error: bad &lt;input&gt;</span>`
	if got != want {
		t.Errorf("markup = %q, want %q", got, want)
	}

	got, err = Markup(Delimited{}, "y", Display)
	if err != nil || !strings.Contains(got, `\[y\]`) {
		t.Errorf("markup = %q, %v", got, err)
	}
}

func TestModeString(t *testing.T) {
	if Inline.String() != "inline" || Display.String() != "display" {
		t.Errorf("mode strings = %s, %s", Inline, Display)
	}
}
