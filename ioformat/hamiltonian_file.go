package ioformat

import (
	"bufio"
	"fmt"
	"io"

	"github.com/twesterhout/walking-lanczos/hamiltonian"
	"github.com/twesterhout/walking-lanczos/qerr"
)

// ReadHamiltonian parses a Hamiltonian file: comment/blank lines are
// skipped, each data line is "<coupling> [ (i,j), (i,j), ... ]" where
// coupling is a real number.
func ReadHamiltonian(r io.Reader) (*hamiltonian.Heisenberg, error) {
	var specs []hamiltonian.Spec

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if isCommentOrBlank(line) {
			continue
		}
		spec, err := parseHamiltonianLine(line)
		if err != nil {
			return nil, qerr.Wrapf(err, qerr.ParseError, "hamiltonian file line %d", lineNo)
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, qerr.Wrap(err, qerr.IOError, "reading hamiltonian file")
	}
	return hamiltonian.New(specs)
}

func parseHamiltonianLine(line string) (hamiltonian.Spec, error) {
	c := newCursor(line)
	coupling, err := c.parseFloat()
	if err != nil {
		return hamiltonian.Spec{}, qerr.Wrap(err, qerr.ParseError, "parsing coupling")
	}
	edges, err := parseAdjacencyList(c)
	if err != nil {
		return hamiltonian.Spec{}, err
	}
	if !c.atEnd() {
		return hamiltonian.Spec{}, qerr.New(qerr.ParseError, "trailing characters after adjacency list")
	}
	return hamiltonian.Spec{Coupling: complex(coupling, 0), Edges: edges}, nil
}

func parseAdjacencyList(c *cursor) ([]hamiltonian.Edge, error) {
	if err := c.expect('['); err != nil {
		return nil, err
	}
	if c.atEnd() {
		return nil, qerr.New(qerr.ParseError, "missing the closing ']'")
	}
	if ch, ok := c.peek(); ok && ch == ']' {
		c.pos++
		return nil, nil
	}

	var edges []hamiltonian.Edge
	edge, err := parseEdge(c)
	if err != nil {
		return nil, err
	}
	edges = append(edges, edge)

	for {
		if c.atEnd() {
			return nil, qerr.New(qerr.ParseError, "missing the closing ']'")
		}
		ch, _ := c.peek()
		switch ch {
		case ']':
			c.pos++
			return edges, nil
		case ',':
			c.pos++
			edge, err := parseEdge(c)
			if err != nil {
				return nil, err
			}
			edges = append(edges, edge)
		default:
			return nil, qerr.Newf(qerr.ParseError, "expected ',' or ']', but got %q", ch)
		}
	}
}

func parseEdge(c *cursor) (hamiltonian.Edge, error) {
	if err := c.expect('('); err != nil {
		return hamiltonian.Edge{}, err
	}
	i, err := c.parseInt()
	if err != nil {
		return hamiltonian.Edge{}, err
	}
	if err := c.expect(','); err != nil {
		return hamiltonian.Edge{}, err
	}
	j, err := c.parseInt()
	if err != nil {
		return hamiltonian.Edge{}, err
	}
	if err := c.expect(')'); err != nil {
		return hamiltonian.Edge{}, err
	}
	return hamiltonian.Edge{I: i, J: j}, nil
}

// WriteHamiltonian writes h back out in the same textual format
// ReadHamiltonian consumes, one spec per line.
func WriteHamiltonian(w io.Writer, h *hamiltonian.Heisenberg) error {
	bw := bufio.NewWriter(w)
	for _, spec := range h.Specs() {
		if _, err := fmt.Fprintf(bw, "%.17g [", real(spec.Coupling)); err != nil {
			return qerr.Wrap(err, qerr.IOError, "writing hamiltonian file")
		}
		for i, e := range spec.Edges {
			sep := ""
			if i > 0 {
				sep = ", "
			}
			if _, err := fmt.Fprintf(bw, "%s(%d,%d)", sep, e.I, e.J); err != nil {
				return qerr.Wrap(err, qerr.IOError, "writing hamiltonian file")
			}
		}
		if _, err := fmt.Fprint(bw, "]\n"); err != nil {
			return qerr.Wrap(err, qerr.IOError, "writing hamiltonian file")
		}
	}
	if err := bw.Flush(); err != nil {
		return qerr.Wrap(err, qerr.IOError, "flushing hamiltonian file")
	}
	return nil
}
