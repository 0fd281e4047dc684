package exactcheck

import (
	"math"
	"testing"

	"github.com/twesterhout/walking-lanczos/hamiltonian"
)

func TestTwoSiteGroundEnergy(t *testing.T) {
	t.Parallel()
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	e, err := GroundEnergy(h, 2)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(e-(-3)) > 1e-9 {
		t.Fatalf("GroundEnergy() = %v, want -3", e)
	}
}

func TestFourSiteRingSpectrumIsHermitian(t *testing.T) {
	t.Parallel()
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 1}, {I: 1, J: 2}, {I: 2, J: 3}, {I: 3, J: 0}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	dense, err := Dense(h, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range dense {
		for j := range dense[i] {
			got := dense[i][j]
			want := complexConj(dense[j][i])
			if math.Abs(real(got)-real(want)) > 1e-9 || math.Abs(imag(got)-imag(want)) > 1e-9 {
				t.Fatalf("matrix not Hermitian at (%d,%d): %v vs conj(%v)", i, j, got, dense[j][i])
			}
		}
	}
	eigs, err := Eigen(dense)
	if err != nil {
		t.Fatal(err)
	}
	if len(eigs) != 16 {
		t.Fatalf("len(eigs) = %d, want 16", len(eigs))
	}
	for i := 1; i < len(eigs); i++ {
		if real(eigs[i].Val) < real(eigs[i-1].Val)-1e-9 {
			t.Fatalf("eigenvalues not sorted ascending: %v then %v", eigs[i-1].Val, eigs[i].Val)
		}
	}
}

func TestChainLengthOutOfRangeRejected(t *testing.T) {
	t.Parallel()
	h, err := hamiltonian.NewUniform([]hamiltonian.Edge{{I: 0, J: 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Dense(h, 0); err == nil {
		t.Fatalf("expected an error for l=0")
	}
	if _, err := Dense(h, MaxSites+1); err == nil {
		t.Fatalf("expected an error for l > MaxSites")
	}
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}
