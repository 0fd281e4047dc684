package diffusion

import (
	"math"
	"testing"

	"github.com/twesterhout/walking-lanczos/hamiltonian"
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

func TestRunConvergesToTwoSiteGroundState(t *testing.T) {
	t.Parallel()
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	psi0, err := state.New(state.Params{SoftMax: 4, HardMax: 4, Shards: 1})
	if err != nil {
		t.Fatal(err)
	}
	// |01> has overlap with both the +1 (triplet-like) and -3 (singlet)
	// eigenstates of J*(2*SWAP-I) on this edge; repeated application of
	// (Λ-H) with Λ=2 amplifies the -3 component fastest since
	// |Λ-(-3)| = 5 > |Λ-1| = 1.
	psi0.Insert(mustConfig(t, "01"), 1)
	if err := psi0.Normalize(); err != nil {
		t.Fatal(err)
	}

	var iterations int
	final, err := Run(2, h, psi0, 20, func(i, n int) { iterations = i })
	if err != nil {
		t.Fatal(err)
	}
	if iterations != 20 {
		t.Fatalf("progress callback saw %d iterations, want 20", iterations)
	}

	e, err := hamiltonian.Energy(h, final)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(real(e)-(-3)) > 1e-6 {
		t.Fatalf("Energy() = %v, want ≈ -3 (the ground state of J*(2*SWAP-I))", e)
	}
}

func TestRunRejectsZeroIterations(t *testing.T) {
	t.Parallel()
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	psi0, err := state.New(state.Params{SoftMax: 4, HardMax: 4, Shards: 1})
	if err != nil {
		t.Fatal(err)
	}
	psi0.Insert(mustConfig(t, "01"), 1)
	if _, err := Run(2, h, psi0, 0, nil); err == nil {
		t.Fatalf("expected an error for n=0")
	}
}

func TestStepPreservesSourceState(t *testing.T) {
	t.Parallel()
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	psi0, err := state.New(state.Params{SoftMax: 4, HardMax: 4, Shards: 1})
	if err != nil {
		t.Fatal(err)
	}
	psi0.Insert(mustConfig(t, "01"), 1)
	before := psi0.Len()

	if _, err := Step(2, h, psi0); err != nil {
		t.Fatal(err)
	}
	if psi0.Len() != before {
		t.Fatalf("Step mutated its source: Len() = %d, want %d", psi0.Len(), before)
	}
}
