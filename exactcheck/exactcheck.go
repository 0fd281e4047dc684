// Package exactcheck builds small dense Heisenberg Hamiltonians by brute
// force (Kronecker products of Pauli matrices) and diagonalizes them,
// serving as an exact ground-truth oracle for tests of the diffusion
// engine on chains too small to need the sparse machinery.
package exactcheck

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/twesterhout/walking-lanczos/hamiltonian"
	"github.com/twesterhout/walking-lanczos/qerr"
)

// MaxSites bounds the chain length this package will diagonalize; beyond
// it, dense diagonalization is impractical and callers should reach for
// mpsref instead.
const MaxSites = 12

var (
	pauliX    = [2][2]complex128{{0, 1}, {1, 0}}
	pauliY    = [2][2]complex128{{0, -1i}, {1i, 0}}
	pauliZ    = [2][2]complex128{{1, 0}, {0, -1}}
	identity2 = [2][2]complex128{{1, 0}, {0, 1}}
)

// Dense assembles the 2^l x 2^l Heisenberg Hamiltonian matrix for h
// restricted to a chain of l sites.
func Dense(h *hamiltonian.Heisenberg, l int) ([][]complex128, error) {
	if l <= 0 || l > MaxSites {
		return nil, qerr.Newf(qerr.InvalidArgument, "chain length must be in [1,%d], got %d", MaxSites, l)
	}
	dim := 1 << uint(l)
	total := zeros(dim)
	for si, spec := range h.Specs() {
		for _, e := range spec.Edges {
			if e.I < 0 || e.I >= l || e.J < 0 || e.J >= l {
				return nil, qerr.Newf(qerr.InvalidArgument, "spec %d edge (%d,%d) out of range for %d sites", si, e.I, e.J, l)
			}
			for _, pauli := range [][2][2]complex128{pauliX, pauliY, pauliZ} {
				term := twoSiteOperator(l, e.I, e.J, pauli)
				addScaled(total, spec.Coupling, term)
			}
		}
	}
	return total, nil
}

// twoSiteOperator builds the l-site operator that applies pauli at both
// site i and site j and identity everywhere else.
func twoSiteOperator(l, i, j int, pauli [2][2]complex128) [][]complex128 {
	factors := make([][2][2]complex128, l)
	for k := range factors {
		factors[k] = identity2
	}
	factors[i] = pauli
	factors[j] = pauli

	acc := to2D(factors[0])
	for k := 1; k < l; k++ {
		acc = kron(acc, to2D(factors[k]))
	}
	return acc
}

func to2D(m [2][2]complex128) [][]complex128 {
	return [][]complex128{{m[0][0], m[0][1]}, {m[1][0], m[1][1]}}
}

func kron(a, b [][]complex128) [][]complex128 {
	ar, ac := len(a), len(a[0])
	br, bc := len(b), len(b[0])
	out := zeros(ar * br)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			if a[i][j] == 0 {
				continue
			}
			for p := 0; p < br; p++ {
				for q := 0; q < bc; q++ {
					out[i*br+p][j*bc+q] += a[i][j] * b[p][q]
				}
			}
		}
	}
	return out
}

func zeros(n int) [][]complex128 {
	out := make([][]complex128, n)
	for i := range out {
		out[i] = make([]complex128, n)
	}
	return out
}

func addScaled(dst [][]complex128, scale complex128, src [][]complex128) {
	for i := range dst {
		for j := range dst[i] {
			dst[i][j] += scale * src[i][j]
		}
	}
}

// ValVec is a single eigenpair.
type ValVec struct {
	Val complex128
	Vec []complex128
}

// Eigen diagonalizes a real-valued dense Hermitian matrix (as Dense
// produces for a real coupling spec) and returns eigenpairs sorted by
// ascending real eigenvalue.
func Eigen(dense [][]complex128) ([]ValVec, error) {
	n := len(dense)
	real2 := mat.NewDense(n, n, nil)
	for i := range dense {
		for j := range dense[i] {
			if imag(dense[i][j]) != 0 {
				return nil, qerr.New(qerr.InvalidArgument, "exactcheck.Eigen requires a real-valued matrix")
			}
			real2.Set(i, j, real(dense[i][j]))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(real2, mat.EigenRight); !ok {
		return nil, qerr.New(qerr.NumericError, "eigendecomposition failed to converge")
	}
	vals := eig.Values(nil)
	vecs := mat.NewCDense(n, n, nil)
	eig.VectorsTo(vecs)

	out := make([]ValVec, 0, len(vals))
	for i, v := range vals {
		vec := make([]complex128, n)
		for j := 0; j < n; j++ {
			vec[j] = vecs.At(j, i)
		}
		out = append(out, ValVec{Val: v, Vec: vec})
	}
	slices.SortFunc(out, func(a, b ValVec) int {
		return cmp.Compare(real(a.Val), real(b.Val))
	})
	return out, nil
}

// GroundEnergy is a convenience wrapper returning the smallest real
// eigenvalue of h restricted to a chain of l sites.
func GroundEnergy(h *hamiltonian.Heisenberg, l int) (float64, error) {
	dense, err := Dense(h, l)
	if err != nil {
		return 0, err
	}
	eigs, err := Eigen(dense)
	if err != nil {
		return 0, err
	}
	if len(eigs) == 0 {
		return 0, qerr.New(qerr.Internal, fmt.Sprintf("no eigenvalues for a %d-site chain", l))
	}
	return real(eigs[0].Val), nil
}
