// Package csvio reads and writes the single-line CSV dialect used by the
// import and export endpoints.
package csvio

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParseLine splits one line into fields. Quoted fields may contain commas and
// "" for a literal quote. A quote inside an unquoted field only toggles the
// quoting state. A trailing comma yields a trailing empty field.
func ParseLine(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && quoted && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case ch == '"':
			quoted = !quoted
		case ch == ',' && !quoted:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(fields, cur.String())
}

// Lines splits a document into physical lines, dropping a trailing \r on each.
func Lines(doc string) []string {
	lines := strings.Split(doc, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Field is one output cell. Text cells are quoted, everything else is bare.
type Field struct {
	v      string
	quoted bool
}

func Text(s string) Field { return Field{v: s, quoted: true} }

func Bare(s string) Field { return Field{v: s} }

func Int(n int64) Field { return Field{v: strconv.FormatInt(n, 10)} }

func Money(f float64) Field { return Field{v: strconv.FormatFloat(f, 'f', 2, 64)} }

type Writer struct {
	w   *bufio.Writer
	err error
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: bufio.NewWriter(w)} }

// Header writes labels unquoted.
func (w *Writer) Header(labels ...string) {
	fields := make([]Field, len(labels))
	for i, l := range labels {
		fields[i] = Bare(l)
	}
	w.Row(fields...)
}

func (w *Writer) Row(fields ...Field) {
	if w.err != nil {
		return
	}
	for i, f := range fields {
		if i > 0 {
			w.put(",")
		}
		if f.quoted {
			w.put(`"` + strings.ReplaceAll(f.v, `"`, `""`) + `"`)
		} else {
			w.put(f.v)
		}
	}
	w.put("\n")
}

func (w *Writer) Blank() { w.put("\n") }

func (w *Writer) put(s string) {
	if w.err == nil {
		_, w.err = w.w.WriteString(s)
	}
}

// Flush must be called once all rows are written.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}
