// Package diffusion implements the power-iteration driver that repeatedly
// applies (Λ·I − H) to a sparse state and truncates it, approximating the
// ground state of H.
package diffusion

import (
	"github.com/twesterhout/walking-lanczos/hamiltonian"
	"github.com/twesterhout/walking-lanczos/qerr"
	"github.com/twesterhout/walking-lanczos/spin"
	"github.com/twesterhout/walking-lanczos/state"
)

// Progress is called once per completed iteration; the driver never
// renders anything itself. i is 1-based and n is the total iteration
// count.
type Progress func(i, n int)

// Step applies one round of (Λ·I − H) to source, returning a fresh,
// shrunk, normalized target state. source is left untouched.
func Step(lambda complex128, h *hamiltonian.Heisenberg, source *state.State) (*state.State, error) {
	params := source.Params()
	target, err := state.New(state.Params{
		SoftMax:           params.SoftMax,
		HardMax:           source.EstimateHardMax(),
		Shards:            params.Shards,
		UseRandomSampling: params.UseRandomSampling,
	})
	if err != nil {
		return nil, qerr.Wrap(err, qerr.Internal, "allocating target state for a diffusion step")
	}

	builder := state.NewBuilder(target)
	builder.Start()
	var applyErr error
	source.ForEach(func(sigma spin.Configuration, c complex128) {
		if applyErr != nil {
			return
		}
		if applyErr = h.Apply(sigma, -c, builder); applyErr != nil {
			return
		}
		builder.Push(sigma, lambda*c)
	})
	if stopErr := builder.Stop(); stopErr != nil && applyErr == nil {
		applyErr = stopErr
	}
	if applyErr != nil {
		return nil, qerr.Wrap(applyErr, qerr.Internal, "applying the diffusion operator")
	}

	if err := target.Shrink(); err != nil {
		return nil, qerr.Wrap(err, qerr.Internal, "shrinking the diffusion target")
	}
	if err := target.Normalize(); err != nil {
		return nil, qerr.Wrap(err, qerr.NumericError, "normalizing the diffusion target")
	}
	return target, nil
}

// Run applies Step n times, starting from psi0, calling progress after
// each completed iteration if progress is non-nil. n must be at least 1.
func Run(lambda complex128, h *hamiltonian.Heisenberg, psi0 *state.State, n int, progress Progress) (*state.State, error) {
	if n < 1 {
		return nil, qerr.New(qerr.InvalidArgument, "number of iterations must be positive")
	}
	current := psi0
	for i := 0; i < n; i++ {
		next, err := Step(lambda, h, current)
		if err != nil {
			return nil, qerr.Wrapf(err, qerr.Internal, "diffusion iteration %d of %d", i+1, n)
		}
		current = next
		if progress != nil {
			progress(i+1, n)
		}
	}
	return current, nil
}
