package hamiltonian

import (
	"github.com/twesterhout/walking-lanczos/qerr"
	"github.com/twesterhout/walking-lanczos/spin"
	"github.com/twesterhout/walking-lanczos/state"
)

// Energy computes ⟨ψ|H|ψ⟩ by building an auxiliary state φ = H|ψ⟩ and
// contracting it against ψ.
func Energy(h *Heisenberg, psi *state.State) (complex128, error) {
	params := psi.Params()
	phi, err := state.New(state.Params{
		SoftMax:           params.SoftMax,
		HardMax:           psi.EstimateHardMax(),
		Shards:            params.Shards,
		UseRandomSampling: params.UseRandomSampling,
	})
	if err != nil {
		return 0, qerr.Wrap(err, qerr.Internal, "allocating auxiliary state for energy estimation")
	}

	builder := state.NewBuilder(phi)
	builder.Start()
	var applyErr error
	psi.ForEach(func(sigma spin.Configuration, c complex128) {
		if applyErr != nil {
			return
		}
		applyErr = h.Apply(sigma, c, builder)
	})
	if stopErr := builder.Stop(); stopErr != nil && applyErr == nil {
		applyErr = stopErr
	}
	if applyErr != nil {
		return 0, qerr.Wrap(applyErr, qerr.Internal, "applying Hamiltonian while estimating energy")
	}

	var energy complex128
	psi.ForEach(func(sigma spin.Configuration, c complex128) {
		if d, ok := phi.Find(sigma); ok {
			energy += complexConj(c) * d
		}
	})
	return energy, nil
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}
