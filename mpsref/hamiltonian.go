package mpsref

import (
	"github.com/fumin/tensor"

	"github.com/twesterhout/walking-lanczos/hamiltonian"
	"github.com/twesterhout/walking-lanczos/qerr"
)

var (
	zero = [][]complex64{
		{0, 0},
		{0, 0},
	}
	identity = [][]complex64{
		{1, 0},
		{0, 1},
	}
	pauliX = [][]complex64{
		{0, 1},
		{1, 0},
	}
	pauliY = [][]complex64{
		{0, -1i},
		{1i, 0},
	}
	pauliZ = [][]complex64{
		{1, 0},
		{0, -1},
	}
)

// Heisenberg builds the bond-dimension-5 MPO for a uniform nearest-neighbor
// Heisenberg chain of n sites with the given real coupling j, i.e.
// H = j * sum_i (Sx_i Sx_{i+1} + Sy_i Sy_{i+1} + Sz_i Sz_{i+1}).
//
// Only a uniform, nearest-neighbor-only chain fits this MPO's bond
// structure; h.Specs() other than a single uniform NewUniform edge list are
// rejected, mirroring the sparse engine's own generality being traded for
// the MPS oracle's structural restriction.
func Heisenberg(h *hamiltonian.Heisenberg, n int) ([]*tensor.Dense, error) {
	j, err := uniformCoupling(h, n)
	if err != nil {
		return nil, err
	}

	scale := func(c complex64, x [][]complex64) [][]complex64 {
		return tensor.T2(x).Mul(c).ToSlice2()
	}
	block := tensor.T4([][][][]complex64{
		{identity, zero, zero, zero, zero},
		{pauliX, zero, zero, zero, zero},
		{pauliY, zero, zero, zero, zero},
		{pauliZ, zero, zero, zero, zero},
		{zero, scale(j, pauliX), scale(j, pauliY), scale(j, pauliZ), identity},
	})

	left, right, up, down := block.Shape()[mpoLeftAxis], block.Shape()[mpoRightAxis], block.Shape()[mpoUpAxis], block.Shape()[mpoDownAxis]
	chain := make([]*tensor.Dense, n)
	// Open boundary conditions: the chain only closes to a scalar energy
	// if its first tensor has no incoming bond and its last has no
	// outgoing one, so the first keeps only block's bottom row and the
	// last only its leftmost column.
	chain[0] = block.Slice([][2]int{{left - 1, left}, {0, right}, {0, up}, {0, down}})
	for i := 1; i < n-1; i++ {
		chain[i] = block
	}
	chain[n-1] = block.Slice([][2]int{{0, left}, {0, 1}, {0, up}, {0, down}})
	return chain, nil
}

// uniformCoupling checks that h is exactly the nearest-neighbor chain of n
// sites with a single real coupling constant, returning that constant.
func uniformCoupling(h *hamiltonian.Heisenberg, n int) (complex64, error) {
	if n < 2 {
		return 0, qerr.Newf(qerr.InvalidArgument, "chain length must be >= 2, got %d", n)
	}
	specs := h.Specs()
	if len(specs) != 1 {
		return 0, qerr.New(qerr.InvalidArgument, "mpsref.Heisenberg requires a single uniform coupling spec")
	}
	spec := specs[0]
	if imag(spec.Coupling) != 0 {
		return 0, qerr.New(qerr.InvalidArgument, "mpsref.Heisenberg requires a real coupling")
	}
	if len(spec.Edges) != n-1 {
		return 0, qerr.Newf(qerr.InvalidArgument, "mpsref.Heisenberg requires exactly %d nearest-neighbor edges, got %d", n-1, len(spec.Edges))
	}
	for i, e := range spec.Edges {
		if e.I != i || e.J != i+1 {
			return 0, qerr.Newf(qerr.InvalidArgument, "mpsref.Heisenberg requires edges (0,1),(1,2),...; got (%d,%d) at position %d", e.I, e.J, i)
		}
	}
	return complex64(complex(real(spec.Coupling), 0)), nil
}
