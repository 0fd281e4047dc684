// Package ioformat implements the text framing for state files and
// Hamiltonian files: comment/blank-line skipping plus a small tokenizer
// for the data lines, translated from a set of hand-rolled C++ parsing
// combinators into idiomatic Go.
package ioformat

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/twesterhout/walking-lanczos/qerr"
)

// cursor walks a single line of input, one token at a time.
type cursor struct {
	line string
	pos  int
}

func newCursor(line string) *cursor {
	return &cursor{line: line}
}

func (c *cursor) skipSpaces() {
	for c.pos < len(c.line) && unicode.IsSpace(rune(c.line[c.pos])) {
		c.pos++
	}
}

func (c *cursor) atEnd() bool {
	c.skipSpaces()
	return c.pos >= len(c.line)
}

func (c *cursor) peek() (byte, bool) {
	c.skipSpaces()
	if c.pos >= len(c.line) {
		return 0, false
	}
	return c.line[c.pos], true
}

func (c *cursor) expect(ch byte) error {
	c.skipSpaces()
	if c.pos >= len(c.line) {
		return qerr.Newf(qerr.ParseError, "expected %q, but reached the end of input", ch)
	}
	if c.line[c.pos] != ch {
		return qerr.Newf(qerr.ParseError, "expected %q, but got %q", ch, c.line[c.pos])
	}
	c.pos++
	return nil
}

func (c *cursor) parseInt() (int, error) {
	c.skipSpaces()
	start := c.pos
	if c.pos < len(c.line) && (c.line[c.pos] == '+' || c.line[c.pos] == '-') {
		c.pos++
	}
	digitsStart := c.pos
	for c.pos < len(c.line) && c.line[c.pos] >= '0' && c.line[c.pos] <= '9' {
		c.pos++
	}
	if c.pos == digitsStart {
		return 0, qerr.Newf(qerr.ParseError, "expected an integer, but got %q", c.rest(start))
	}
	x, err := strconv.Atoi(c.line[start:c.pos])
	if err != nil {
		return 0, qerr.Wrapf(err, qerr.ParseError, "parsing integer %q", c.line[start:c.pos])
	}
	return x, nil
}

func (c *cursor) parseFloat() (float64, error) {
	c.skipSpaces()
	start := c.pos
	for c.pos < len(c.line) {
		ch := c.line[c.pos]
		if (ch >= '0' && ch <= '9') || ch == '+' || ch == '-' || ch == '.' || ch == 'e' || ch == 'E' {
			c.pos++
			continue
		}
		break
	}
	if c.pos == start {
		return 0, qerr.Newf(qerr.ParseError, "expected a number, but got %q", c.rest(start))
	}
	x, err := strconv.ParseFloat(c.line[start:c.pos], 64)
	if err != nil {
		return 0, qerr.Wrapf(err, qerr.ParseError, "parsing number %q", c.line[start:c.pos])
	}
	return x, nil
}

func (c *cursor) parseToken() string {
	c.skipSpaces()
	start := c.pos
	for c.pos < len(c.line) && !unicode.IsSpace(rune(c.line[c.pos])) {
		c.pos++
	}
	return c.line[start:c.pos]
}

func (c *cursor) rest(from int) string {
	s := c.line[from:]
	const limit = 10
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// isCommentOrBlank reports whether a raw file line should be skipped:
// empty, whitespace-only, or beginning with '#' once leading whitespace
// is discarded.
func isCommentOrBlank(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return trimmed == "" || trimmed[0] == '#'
}
