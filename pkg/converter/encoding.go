package converter

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewChartReader returns a reader that decodes chart text to UTF-8.
// A UTF-8 or UTF-16 byte order mark is honoured and stripped; text without one is read as UTF-8.
func NewChartReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// lineReader yields trimmed, non-blank lines and tracks the line number
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func newLineReader(r io.Reader) *lineReader {
	s := bufio.NewScanner(NewChartReader(r))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineReader{scanner: s}
}

// next returns the next non-blank line; ok is false once input is exhausted
func (l *lineReader) next() (line string, ok bool) {
	for l.scanner.Scan() {
		l.line++
		line = strings.TrimSpace(l.scanner.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

// mustNext is next for lines a section still owes
func (l *lineReader) mustNext() (string, error) {
	line, ok := l.next()
	if !ok {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", &ParsingError{Kind: MalformedInput, Line: l.line, Msg: "section not closed", Err: ErrUnexpectedEOF}
	}
	return line, nil
}

func (l *lineReader) err() error {
	return l.scanner.Err()
}
