package hamiltonian

import (
	"math"
	"testing"

	"github.com/twesterhout/walking-lanczos/spin"
	"github.com/twesterhout/walking-lanczos/state"
)

func mustConfig(t *testing.T, s string) spin.Configuration {
	t.Helper()
	c, err := spin.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return c
}

func applyAndCollect(t *testing.T, h *Heisenberg, sigma spin.Configuration, c complex128) map[spin.Configuration]complex128 {
	t.Helper()
	target, err := state.New(state.Params{SoftMax: 8, HardMax: 8, Shards: 1})
	if err != nil {
		t.Fatal(err)
	}
	b := state.NewBuilder(target)
	b.Start()
	if err := h.Apply(sigma, c, b); err != nil {
		t.Fatal(err)
	}
	if err := b.Stop(); err != nil {
		t.Fatal(err)
	}
	got := map[spin.Configuration]complex128{}
	target.ForEach(func(cfg spin.Configuration, coeff complex128) { got[cfg] = coeff })
	return got
}

func TestApplySingleEdgeFlip(t *testing.T) {
	t.Parallel()
	h, err := NewUniform([]Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	sigma := mustConfig(t, "01")
	got := applyAndCollect(t, h, sigma, 1)

	if c, ok := got[sigma]; !ok || c != -1 {
		t.Fatalf("diagonal delta for %q = (%v,%v), want (-1,true)", sigma, c, ok)
	}
	flipped := mustConfig(t, "10")
	if c, ok := got[flipped]; !ok || c != 2 {
		t.Fatalf("off-diagonal delta for %q = (%v,%v), want (2,true)", flipped, c, ok)
	}
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 emitted deltas, got %d", len(got))
	}
}

func TestApplyAlignedEdgeNoOffDiagonal(t *testing.T) {
	t.Parallel()
	h, err := NewUniform([]Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	sigma := mustConfig(t, "00")
	got := applyAndCollect(t, h, sigma, 1)

	if c, ok := got[sigma]; !ok || c != 1 {
		t.Fatalf("diagonal delta for %q = (%v,%v), want (1,true)", sigma, c, ok)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 emitted delta, got %d", len(got))
	}
}

func TestSelfLoopRejected(t *testing.T) {
	t.Parallel()
	if _, err := NewUniform([]Edge{{I: 0, J: 0}}, 1); err == nil {
		t.Fatalf("expected an error for a self-loop edge")
	}
}

func TestEnergyHermiticityForRealCoupling(t *testing.T) {
	t.Parallel()
	h, err := NewUniform([]Edge{{I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 0}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	psi, err := state.New(state.Params{SoftMax: 16, HardMax: 16, Shards: 1})
	if err != nil {
		t.Fatal(err)
	}
	psi.Insert(mustConfig(t, "010"), complex(0.6, 0.1))
	psi.Insert(mustConfig(t, "101"), complex(0.3, -0.2))
	psi.Insert(mustConfig(t, "111"), complex(0.1, 0.4))
	if err := psi.Normalize(); err != nil {
		t.Fatal(err)
	}

	e, err := Energy(h, psi)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(imag(e)) > 1e-9 {
		t.Fatalf("Energy().Imag() = %v, want ≈0 for a real Heisenberg spec", imag(e))
	}
}

func TestEnergyTwoSiteGroundState(t *testing.T) {
	t.Parallel()
	// H = sigma_1 . sigma_2, singlet |01> - |10> has energy -3, triplet
	// |01> + |10> has energy +1 (matching J*(2*SWAP - I) eigenvalues).
	h, err := NewUniform([]Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	psi, err := state.New(state.Params{SoftMax: 4, HardMax: 4, Shards: 1})
	if err != nil {
		t.Fatal(err)
	}
	psi.Insert(mustConfig(t, "01"), complex(1/math.Sqrt2, 0))
	psi.Insert(mustConfig(t, "10"), complex(-1/math.Sqrt2, 0))

	e, err := Energy(h, psi)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(real(e)-(-3)) > 1e-9 {
		t.Fatalf("Energy() = %v, want -3", e)
	}
}
