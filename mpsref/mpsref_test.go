package mpsref

import (
	"math"
	"testing"

	"github.com/twesterhout/walking-lanczos/exactcheck"
	"github.com/twesterhout/walking-lanczos/hamiltonian"
)

func TestGroundEnergyMatchesDenseOracle(t *testing.T) {
	edges := []hamiltonian.Edge{{I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 3}}
	h, err := hamiltonian.NewUniform(edges, 1)
	if err != nil {
		t.Fatal(err)
	}

	want, err := exactcheck.GroundEnergy(h, 4)
	if err != nil {
		t.Fatal(err)
	}

	opt := DefaultOptions()
	opt.BondDim = 8
	got, err := GroundEnergy(h, 4, opt)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(got-want) > 1e-2 {
		t.Fatalf("GroundEnergy() = %v, want ≈ %v (from exactcheck)", got, want)
	}
}

func TestHeisenbergRejectsNonNearestNeighborEdges(t *testing.T) {
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 2}, {I: 1, J: 3}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Heisenberg(h, 4); err == nil {
		t.Fatalf("expected an error for non-chain edges")
	}
}

func TestHeisenbergRejectsTooShortChain(t *testing.T) {
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Heisenberg(h, 1); err == nil {
		t.Fatalf("expected an error for n=1")
	}
}
