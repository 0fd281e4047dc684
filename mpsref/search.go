// Package mpsref provides a matrix-product-state ground-state search used
// as a second, independent oracle for validating diffusion.Run on uniform
// chains too long for exactcheck's dense diagonalization.
//
// References:
//   - The density-matrix renormalization group in the age of matrix product states, Ulrich Schollwock
package mpsref

import (
	"fmt"
	"math/cmplx"
	"slices"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/twesterhout/walking-lanczos/hamiltonian"
	"github.com/twesterhout/walking-lanczos/rng"
)

const (
	mpsLeftAxis  = 0
	mpsUpAxis    = 1
	mpsRightAxis = 2

	mpoLeftAxis  = 0
	mpoRightAxis = 1
	mpoUpAxis    = 2
	mpoDownAxis  = 3

	epsilon = 0x1p-23
)

// Options configures the ground-state sweep.
type Options struct {
	MaxIterations int
	Tol           float32
	BondDim       int
}

// DefaultOptions returns the sweep parameters used unless the caller
// overrides them.
func DefaultOptions() Options {
	return Options{MaxIterations: 32, Tol: 1e-6, BondDim: 16}
}

// sweepDir names which end of the chain a pass grows its orthogonality
// center toward.
type sweepDir int

const (
	towardRight sweepDir = iota
	towardLeft
)

// solver holds the mutable state of one variational ground-state search: a
// fixed MPO, the current MPS guess, a rolling cache of contracted
// boundary environments (one slot per site, reinterpreted as "left of"
// or "right of" depending on which side of the moving orthogonality
// center it sits on), and the scratch tensors every sweep step reuses.
type solver struct {
	mpo []*tensor.Dense
	mps []*tensor.Dense
	env []*tensor.Dense
	buf [10]*tensor.Dense
}

func newSolver(mpo []*tensor.Dense, bondDim int) *solver {
	s := &solver{mpo: mpo, mps: initialGuess(mpo, bondDim)}
	s.env = make([]*tensor.Dense, len(mpo))
	for i := range s.env {
		s.env[i] = tensor.Zeros(1)
	}
	for i := range s.buf {
		s.buf[i] = tensor.Zeros(1)
	}
	return s
}

// GroundEnergy searches for the ground state of the uniform Heisenberg
// chain h on n sites and returns its energy.
func GroundEnergy(h *hamiltonian.Heisenberg, n int, opt Options) (float64, error) {
	mpo, err := Heisenberg(h, n)
	if err != nil {
		return 0, err
	}

	s := newSolver(mpo, opt.BondDim)
	if err := s.run(opt); err != nil {
		return 0, errors.Wrap(err, "mpsref ground state search did not converge")
	}

	norm2 := s.norm2()
	e0 := s.fullLeftContraction() / norm2
	return float64(real(e0)), nil
}

// initialGuess builds a random open-boundary MPS whose bond dimension
// grows with the physical dimension out from each end and saturates at
// maxD toward the middle — the smallest ansatz still able to represent an
// arbitrary state of the chain before truncation.
func initialGuess(mpo []*tensor.Dense, maxD int) []*tensor.Dense {
	n := len(mpo)
	mps := make([]*tensor.Dense, n)

	physDim := mpo[0].Shape()[mpoDownAxis]
	leftDim := physDim
	mps[0] = randTensor(1, physDim, min(physDim, maxD))

	for i := 1; i <= n-2; i++ {
		physDim := mpo[i].Shape()[mpoDownAxis]
		var rightDim int
		switch {
		case i < n/2:
			rightDim = leftDim * physDim
		case i > n/2:
			rightDim = leftDim / physDim
		case n%2 == 0:
			rightDim = leftDim / physDim
		default:
			rightDim = leftDim
		}
		leftDim = rightDim
		mps[i] = randTensor(mps[i-1].Shape()[mpsRightAxis], physDim, min(rightDim, maxD))
	}

	physDim = mpo[n-1].Shape()[mpoDownAxis]
	mps[n-1] = randTensor(mps[n-2].Shape()[mpsRightAxis], physDim, 1)
	return mps
}

// norm2 returns <mps|mps>, computed by contracting the chain from the left.
func (s *solver) norm2() complex64 {
	f := ones(s.buf[0], 1, 1)
	for _, m := range s.mps {
		fm := tensor.Contract(s.buf[1], f, m, [][2]int{{1, mpsLeftAxis}})
		tensor.Contract(f, m.Conj(), fm, [][2]int{{mpsLeftAxis, 0}, {mpsUpAxis, 1}})
	}
	if !slices.Equal(f.Shape(), []int{1, 1}) {
		panic(fmt.Sprintf("%#v", f.Shape()))
	}
	return f.At(0, 0)
}

// growLeftEnvironment absorbs site (w, m) into fi1, the contracted
// boundary environment of everything strictly to its left, writing the
// larger environment into dst.
func (s *solver) growLeftEnvironment(dst, fi1, w, m *tensor.Dense) *tensor.Dense {
	fm := tensor.Contract(s.buf[0], fi1, m, [][2]int{{2, mpsLeftAxis}})
	wfm := tensor.Contract(s.buf[1], w, fm, [][2]int{{mpoDownAxis, 2}, {mpoLeftAxis, 1}})
	return tensor.Contract(dst, m.Conj(), wfm, [][2]int{{mpsLeftAxis, 2}, {mpsUpAxis, 1}})
}

// growRightEnvironment is growLeftEnvironment's mirror image, absorbing
// site (w, m) from the right.
func (s *solver) growRightEnvironment(dst, fi1, w, m *tensor.Dense) *tensor.Dense {
	fm := tensor.Contract(s.buf[0], fi1, m, [][2]int{{2, mpsRightAxis}})
	wfm := tensor.Contract(s.buf[1], w, fm, [][2]int{{mpoDownAxis, 3}, {mpoRightAxis, 1}})
	return tensor.Contract(dst, m.Conj(), wfm, [][2]int{{mpsRightAxis, 2}, {mpsUpAxis, 1}})
}

// fullLeftContraction re-derives <mps|H|mps> from scratch by folding the
// whole chain from the left, independent of whatever the sweep left
// cached in s.env — used once, as a final check, after run converges.
func (s *solver) fullLeftContraction() complex64 {
	scratch := s.buf[9]
	fi1 := ones(scratch, 1, 1, 1)
	for i, w := range s.mpo {
		fi1 = s.growLeftEnvironment(scratch, fi1, w, s.mps[i])
	}
	if !slices.Equal(fi1.Shape(), []int{1, 1, 1}) {
		panic(fmt.Sprintf("%#v", fi1.Shape()))
	}
	return fi1.At(0, 0, 0)
}

// initEnvironment seeds s.env before the first sweep. Sweeping toward the
// right first needs every site's right-of environment already cached, so
// this always folds from the right end regardless of which direction the
// very first sweep will take.
func (s *solver) initEnvironment() {
	n := len(s.mps)
	fi1 := ones(s.env[n-1], 1, 1, 1)
	for i := n - 1; i >= 0; i-- {
		fi1 = s.growRightEnvironment(s.env[i], fi1, s.mpo[i], s.mps[i])
	}
}

func (s *solver) h2Expectation() complex64 {
	fi1 := ones(s.buf[0], 1, 1, 1, 1)
	for i, w := range s.mpo {
		m := s.mps[i]
		fm := tensor.Contract(s.buf[1], fi1, m, [][2]int{{3, mpsLeftAxis}})
		wfm := tensor.Contract(s.buf[0], w, fm, [][2]int{{mpoDownAxis, 3}, {mpoLeftAxis, 2}})
		wwfm := tensor.Contract(s.buf[1], w, wfm, [][2]int{{mpoDownAxis, 1}, {mpoLeftAxis, 3}})
		fi1 = tensor.Contract(s.buf[0], m.Conj(), wwfm, [][2]int{{mpsLeftAxis, 3}, {mpsUpAxis, 1}})
	}
	if !slices.Equal(fi1.Shape(), []int{1, 1, 1, 1}) {
		panic(fmt.Sprintf("%#v", fi1.Shape()))
	}
	return fi1.At(0, 0, 0, 0)
}

// localHamiltonian assembles the effective single-site Hamiltonian matrix
// the eigensolver diagonalizes at each sweep step, from the environments
// on either side of the site and its own MPO tensor.
func (s *solver) localHamiltonian(fLeft, fRight, w *tensor.Dense) *tensor.Dense {
	dst := s.buf[0]
	wRight := tensor.Contract(s.buf[1], w, fRight, [][2]int{{mpoRightAxis, 1}})
	lwr := tensor.Contract(s.buf[2], fLeft, wRight, [][2]int{{1, 0}})
	resetCopy(dst, lwr.Transpose(0, 2, 4, 1, 3, 5))

	ls, ws, rs := fLeft.Shape(), w.Shape(), fRight.Shape()
	if ls[0] != ls[2] || ws[mpoUpAxis] != ws[mpoDownAxis] || rs[0] != rs[2] {
		panic(fmt.Sprintf("%#v %#v %#v", ls, ws, rs))
	}
	return dst.Reshape(ls[0]*ws[mpoUpAxis]*rs[0], ls[2]*ws[mpoDownAxis]*rs[2])
}

// canonicalize brings site i into the canonical form required by a sweep
// heading in dir, absorbing the leftover factor into the neighbor the
// sweep is about to visit next.
func (s *solver) canonicalize(i int, dir sweepDir) {
	m := s.mps[i]
	shape := m.Shape()
	left, up, right := shape[mpsLeftAxis], shape[mpsUpAxis], shape[mpsRightAxis]
	qrBufs := [2]*tensor.Dense{s.buf[1], s.buf[2]}

	switch dir {
	case towardRight:
		flat := m.Reshape(left*up, right)
		q := s.buf[0]
		r := tensor.QR(q, flat, qrBufs)
		resetCopy(s.mps[i+1], tensor.Contract(s.buf[1], r, s.mps[i+1], [][2]int{{1, mpsLeftAxis}}))
		s.mps[i] = resetCopy(m, q).Reshape(left, up, -1)
	case towardLeft:
		flat := m.Reshape(left, up*right)
		q := s.buf[0]
		l := lq(q, flat, qrBufs)
		resetCopy(s.mps[i-1], tensor.Contract(s.buf[1], s.mps[i-1], l, [][2]int{{mpsRightAxis, 0}}))
		s.mps[i] = resetCopy(m, q.H()).Reshape(-1, up, right)
	}
}

// sweep optimizes every site from one end of the chain to the other,
// solving each site's local eigenproblem in turn and re-canonicalizing
// behind it before moving to the next.
func (s *solver) sweep(dir sweepDir) error {
	n := len(s.mps)
	start, stop, step := 0, n-1, 1
	if dir == towardLeft {
		start, stop, step = n-1, 0, -1
	}

	for l := start; l != stop; l += step {
		nearIdx := l - step
		var near *tensor.Dense
		if nearIdx >= 0 && nearIdx < n {
			near = s.env[nearIdx]
		} else {
			near = ones(s.env[l], 1, 1, 1)
		}
		far := s.env[l+step]

		fLeft, fRight := near, far
		if dir == towardLeft {
			fLeft, fRight = far, near
		}
		h := s.localHamiltonian(fLeft, fRight, s.mpo[l])

		eigvals, eigvecs := s.buf[1], s.buf[2]
		if err := tensor.Arnoldi(eigvals, eigvecs, h, 1, [7]*tensor.Dense(s.buf[3:])); err != nil {
			return errors.Wrap(err, "")
		}
		resetCopy(s.mps[l], eigvecs.Reshape(s.mps[l].Shape()...))

		s.canonicalize(l, dir)
		s.env[l+step].Reset(1)

		if dir == towardRight {
			s.growLeftEnvironment(s.env[l], fLeft, s.mpo[l], s.mps[l])
		} else {
			s.growRightEnvironment(s.env[l], fRight, s.mpo[l], s.mps[l])
		}
	}
	return nil
}

// run alternates right- and left-heading sweeps until the energy variance
// <H^2>-<H>^2 falls below opt.Tol*max(|<H^2>|, 1), the standard DMRG
// convergence criterion for a variational ground-state search.
func (s *solver) run(opt Options) error {
	for i := len(s.mps) - 1; i >= 1; i-- {
		s.canonicalize(i, towardLeft)
	}
	s.initEnvironment()

	converged := false
	var variance complex64
	for i := 0; i < opt.MaxIterations; i++ {
		if err := s.sweep(towardRight); err != nil {
			return errors.Wrap(err, fmt.Sprintf("iteration %d", i))
		}
		if err := s.sweep(towardLeft); err != nil {
			return errors.Wrap(err, fmt.Sprintf("iteration %d", i))
		}

		norm2 := s.norm2()
		if abs(norm2) < epsilon {
			return errors.Errorf("degenerate norm %f", norm2)
		}
		s.growRightEnvironment(s.env[0], s.env[1], s.mpo[0], s.mps[0])
		energy := s.env[0].At(0, 0, 0) / norm2
		h2 := s.h2Expectation() / norm2
		variance = h2 - energy*energy
		if abs(variance) < opt.Tol*max(abs(h2), 1) {
			converged = true
			break
		}
	}
	if !converged {
		return errors.Errorf("did not converge, final variance %v", variance)
	}
	return nil
}

// lq computes the LQ decomposition of a via the identity a = LQ <=>
// a^H = Q^H L^H, i.e. a QR decomposition of a's conjugate transpose.
func lq(q, a *tensor.Dense, bufs [2]*tensor.Dense) *tensor.Dense {
	r := tensor.QR(q, a.H(), bufs)
	return r.H()
}

func resetCopy(dst, src *tensor.Dense) *tensor.Dense {
	shape := src.Shape()
	dst.Reset(shape...).Set(make([]int, len(shape)), src)
	return dst
}

func ones(t *tensor.Dense, shape ...int) *tensor.Dense {
	t.Reset(shape...)
	for ijk := range t.All() {
		t.SetAt(ijk, 1)
	}
	return t
}

func abs(x complex64) float32 {
	return float32(cmplx.Abs(complex128(x)))
}

func randTensor(shape ...int) *tensor.Dense {
	t := tensor.Zeros(shape...)
	for ijk := range t.All() {
		v := complex(float32(rng.Float64())*2-1, float32(rng.Float64())*2-1)
		t.SetAt(ijk, v)
	}
	return t
}
