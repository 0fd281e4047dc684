package ioformat

import (
	"bufio"
	"fmt"
	"io"

	"github.com/twesterhout/walking-lanczos/qerr"
	"github.com/twesterhout/walking-lanczos/spin"
	"github.com/twesterhout/walking-lanczos/state"
)

// ReadState parses a state file: comment/blank lines are skipped, each
// data line is "<config> <real> <imag>". A duplicate configuration is a
// fatal parse error. The resulting state is built fresh with params.
func ReadState(r io.Reader, params state.Params) (*state.State, error) {
	s, err := state.New(params)
	if err != nil {
		return nil, qerr.Wrap(err, qerr.InvalidArgument, "constructing state for ReadState")
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if isCommentOrBlank(line) {
			continue
		}
		config, coeff, err := parseStateLine(line)
		if err != nil {
			return nil, qerr.Wrapf(err, qerr.ParseError, "state file line %d", lineNo)
		}
		if !s.Insert(config, coeff) {
			return nil, qerr.Newf(qerr.ParseError, "state file line %d: duplicate configuration %q", lineNo, config)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, qerr.Wrap(err, qerr.IOError, "reading state file")
	}
	return s, nil
}

func parseStateLine(line string) (spin.Configuration, complex128, error) {
	c := newCursor(line)
	token := c.parseToken()
	if token == "" {
		return spin.Configuration{}, 0, qerr.New(qerr.ParseError, "missing configuration field")
	}
	config, err := spin.Parse(token)
	if err != nil {
		return spin.Configuration{}, 0, qerr.Wrap(err, qerr.ParseError, "parsing configuration")
	}
	re, err := c.parseFloat()
	if err != nil {
		return spin.Configuration{}, 0, qerr.Wrap(err, qerr.ParseError, "parsing real part")
	}
	im, err := c.parseFloat()
	if err != nil {
		return spin.Configuration{}, 0, qerr.Wrap(err, qerr.ParseError, "parsing imaginary part")
	}
	if !c.atEnd() {
		return spin.Configuration{}, 0, qerr.New(qerr.ParseError, "trailing characters after imaginary part")
	}
	return config, complex(re, im), nil
}

// WriteState writes s to w in s.ForEach's iteration order.
func WriteState(w io.Writer, s *state.State) error {
	bw := bufio.NewWriter(w)
	var writeErr error
	s.ForEach(func(config spin.Configuration, coeff complex128) {
		if writeErr != nil {
			return
		}
		_, writeErr = fmt.Fprintf(bw, "%s\t%.17g\t%.17g\n", config.String(), real(coeff), imag(coeff))
	})
	if writeErr != nil {
		return qerr.Wrap(writeErr, qerr.IOError, "writing state file")
	}
	if err := bw.Flush(); err != nil {
		return qerr.Wrap(err, qerr.IOError, "flushing state file")
	}
	return nil
}
