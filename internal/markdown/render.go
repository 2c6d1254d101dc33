package markdown

import (
	"html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/util"
)

// Render writes an event stream as HTML. Text is escaped, KindHTML is
// copied verbatim, and any math event that reaches this point unrendered is
// written back in its $ delimiters.
func Render(s Stream) string {
	var b strings.Builder
	for e := range s {
		writeEvent(&b, e)
	}
	return b.String()
}

func writeEvent(b *strings.Builder, e Event) {
	switch e.Kind {
	case KindText:
		b.WriteString(html.EscapeString(e.Text))
	case KindHTML:
		b.WriteString(e.Text)
	case KindMath:
		fence := "$"
		if e.Math == MathDisplay {
			fence = "$$"
		}
		b.WriteString(fence + html.EscapeString(e.Text) + fence)
	case KindSoftBreak:
		b.WriteByte('\n')
	case KindHardBreak:
		b.WriteString("<br>\n")
	case KindStart:
		writeStart(b, e)
	case KindEnd:
		writeEnd(b, e)
	}
}

func writeStart(b *strings.Builder, e Event) {
	switch e.Tag {
	case TagParagraph:
		b.WriteString("<p>")
	case TagHeading:
		b.WriteString("<h" + strconv.Itoa(e.Level) + ">")
	case TagBlockQuote:
		b.WriteString("<blockquote>\n")
	case TagList:
		switch {
		case !e.Ordered:
			b.WriteString("<ul>\n")
		case e.Start > 1:
			b.WriteString(`<ol start="` + strconv.Itoa(e.Start) + "\">\n")
		default:
			b.WriteString("<ol>\n")
		}
	case TagItem:
		b.WriteString("<li>")
	case TagEmphasis:
		b.WriteString("<em>")
	case TagStrong:
		b.WriteString("<strong>")
	case TagStrikethrough:
		b.WriteString("<del>")
	case TagLink:
		b.WriteString(`<a href="` + html.EscapeString(string(util.URLEscape([]byte(e.Dest), true))) + `"`)
		if e.Title != "" {
			b.WriteString(` title="` + html.EscapeString(e.Title) + `"`)
		}
		b.WriteString(">")
	case TagTable:
		b.WriteString("<table>\n")
	case TagTableHead:
		b.WriteString("<thead>\n<tr>\n")
	case TagTableBody:
		b.WriteString("<tbody>\n")
	case TagTableRow:
		b.WriteString("<tr>\n")
	case TagTableCell:
		cell := "td"
		if e.Header {
			cell = "th"
		}
		b.WriteString("<" + cell)
		if e.Align != "" {
			b.WriteString(` style="text-align: ` + e.Align + `"`)
		}
		b.WriteString(">")
	}
}

func writeEnd(b *strings.Builder, e Event) {
	switch e.Tag {
	case TagParagraph:
		b.WriteString("</p>\n")
	case TagHeading:
		b.WriteString("</h" + strconv.Itoa(e.Level) + ">\n")
	case TagBlockQuote:
		b.WriteString("</blockquote>\n")
	case TagList:
		if e.Ordered {
			b.WriteString("</ol>\n")
		} else {
			b.WriteString("</ul>\n")
		}
	case TagItem:
		b.WriteString("</li>\n")
	case TagEmphasis:
		b.WriteString("</em>")
	case TagStrong:
		b.WriteString("</strong>")
	case TagStrikethrough:
		b.WriteString("</del>")
	case TagLink:
		b.WriteString("</a>")
	case TagTable:
		b.WriteString("</table>\n")
	case TagTableHead:
		b.WriteString("</tr>\n</thead>\n")
	case TagTableBody:
		b.WriteString("</tbody>\n")
	case TagTableRow:
		b.WriteString("</tr>\n")
	case TagTableCell:
		if e.Header {
			b.WriteString("</th>\n")
		} else {
			b.WriteString("</td>\n")
		}
	}
}
