package text

import "fmt"

// NewlineType is the line-ending convention a [Text] was detected to
// use at Load, consulted by [Text.InsertNewline].
type NewlineType uint8

const (
	NewlineLF NewlineType = iota
	NewlineCRLF
)

// NewlineChar returns the literal bytes for t's detected newline
// convention.
func (t *Text) NewlineChar() []byte {
	if t.newline == NewlineCRLF {
		return []byte("\r\n")
	}

	return []byte("\n")
}

// InsertNewline inserts the text's detected newline sequence at pos.
func (t *Text) InsertNewline(pos Pos) error {
	return t.Insert(pos, t.NewlineChar())
}

// AppendFormatted renders format/args with fmt.Sprintf and inserts the
// result at the end of the text.
func (t *Text) AppendFormatted(format string, args ...any) error {
	return t.InsertFormatted(t.size, format, args...)
}

// InsertFormatted renders format/args with fmt.Sprintf and inserts the
// result at pos.
func (t *Text) InsertFormatted(pos Pos, format string, args ...any) error {
	rendered := fmt.Sprintf(format, args...)

	return t.Insert(pos, []byte(rendered))
}
