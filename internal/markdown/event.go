// Package markdown turns a Markdown body into a single-pass stream of
// structural events and writes such streams back out as HTML.
package markdown

import (
	"iter"

	"github.com/starford/quire/internal/mathrender"
)

// Kind is the event type.
type Kind int

const (
	KindStart Kind = iota
	KindEnd
	KindText
	// KindHTML is raw markup copied to the output verbatim.
	KindHTML
	KindMath
	KindSoftBreak
	KindHardBreak
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindText:
		return "text"
	case KindHTML:
		return "html"
	case KindMath:
		return "math"
	case KindSoftBreak:
		return "softbreak"
	case KindHardBreak:
		return "hardbreak"
	}
	return "unknown"
}

// Tag identifies the container a Start or End event opens or closes.
type Tag int

const (
	TagNone Tag = iota
	TagParagraph
	TagHeading
	TagBlockQuote
	TagList
	TagItem
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagLink
	TagTable
	TagTableHead
	TagTableBody
	TagTableRow
	TagTableCell
)

// MathMode selects inline or display typesetting.
type MathMode = mathrender.Mode

const (
	MathInline  = mathrender.Inline
	MathDisplay = mathrender.Display
)

// Event is one token of a document body.
type Event struct {
	Kind Kind
	Tag  Tag
	// Level is the heading level (1-6).
	Level int
	// Text holds text content, raw HTML, or a math expression.
	Text string
	Math MathMode

	Dest    string // link destination
	Title   string // link title
	Ordered bool   // ordered list
	Start   int    // ordered list start number
	Align   string // table cell alignment, empty for none
	Header  bool   // table cell lives in the header row
}

// Start returns a Start event for tag.
func Start(tag Tag) Event { return Event{Kind: KindStart, Tag: tag} }

// End returns an End event for tag.
func End(tag Tag) Event { return Event{Kind: KindEnd, Tag: tag} }

// Heading returns the Start event of a heading of the given level.
func Heading(level int) Event { return Event{Kind: KindStart, Tag: TagHeading, Level: level} }

// HeadingEnd returns the End event of a heading of the given level.
func HeadingEnd(level int) Event { return Event{Kind: KindEnd, Tag: TagHeading, Level: level} }

// Text returns a text event.
func Text(s string) Event { return Event{Kind: KindText, Text: s} }

// HTML returns a raw markup event.
func HTML(s string) Event { return Event{Kind: KindHTML, Text: s} }

// Math returns a math event.
func Math(mode MathMode, expr string) Event { return Event{Kind: KindMath, Math: mode, Text: expr} }

// Stream is the single-pass event sequence of one document body.
type Stream = iter.Seq[Event]

// Events turns a literal slice into a Stream.
func Events(evs ...Event) Stream {
	return func(yield func(Event) bool) {
		for _, e := range evs {
			if !yield(e) {
				return
			}
		}
	}
}

// Collect drains a Stream into a slice.
func Collect(s Stream) []Event {
	var out []Event
	for e := range s {
		out = append(out, e)
	}
	return out
}
