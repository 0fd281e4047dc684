// Package state implements the sharded, concurrently-built sparse
// quantum state: a partitioned map from packed spin configurations to
// complex coefficients, with deterministic and randomized truncation
// policies and single-threaded iteration/normalization operations.
package state

import (
	"fmt"
	"math"
	"sort"

	"github.com/twesterhout/walking-lanczos/alias"
	"github.com/twesterhout/walking-lanczos/qerr"
	"github.com/twesterhout/walking-lanczos/rng"
	"github.com/twesterhout/walking-lanczos/spin"
)

// Params bundles the tunable parameters of a sharded state.
type Params struct {
	// SoftMax is the target size after Shrink.
	SoftMax int
	// HardMax is a per-shard allocation hint.
	HardMax int
	// Shards is the number of shards, a power of two no greater than 256.
	Shards int
	// UseRandomSampling selects the truncation policy: false for
	// deterministic smallest-weight pruning, true for weighted random
	// resampling.
	UseRandomSampling bool
}

func (p Params) validate() error {
	if p.SoftMax < 2 {
		return qerr.New(qerr.InvalidArgument, "soft_max must be at least 2")
	}
	if p.HardMax <= 0 {
		return qerr.New(qerr.InvalidArgument, "hard_max must be positive")
	}
	if p.Shards <= 0 || p.Shards > 256 || p.Shards&(p.Shards-1) != 0 {
		return qerr.New(qerr.InvalidArgument, "shard count must be a power of two no greater than 256")
	}
	return nil
}

// State is a sharded map from spin.Configuration to complex128.
//
// Outside of a Builder session, State's methods are not safe for
// concurrent use; during a session, shards are exclusively owned by their
// updater goroutines and must only be touched through the Builder.
type State struct {
	params Params
	shards []map[spin.Configuration]complex128
}

// New constructs an empty State.
func New(params Params) (*State, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	shards := make([]map[spin.Configuration]complex128, params.Shards)
	for i := range shards {
		shards[i] = make(map[spin.Configuration]complex128, params.HardMax)
	}
	return &State{params: params, shards: shards}, nil
}

// Params returns the parameters the State was constructed with.
func (s *State) Params() Params {
	return s.params
}

func (s *State) shardIndex(c spin.Configuration) int {
	return int(c.FirstByte()) & (len(s.shards) - 1)
}

// Insert adds (config, coeff) if config is not already present, returning
// whether the insertion happened. It never modifies an existing entry;
// callers that want additive accumulation go through a Builder instead.
func (s *State) Insert(config spin.Configuration, coeff complex128) bool {
	shard := s.shards[s.shardIndex(config)]
	if _, ok := shard[config]; ok {
		return false
	}
	shard[config] = coeff
	return true
}

// Find looks up config's coefficient.
func (s *State) Find(config spin.Configuration) (complex128, bool) {
	shard := s.shards[s.shardIndex(config)]
	c, ok := shard[config]
	return c, ok
}

// ForEach visits every entry exactly once, in unspecified order. fn must
// not mutate the map's key set.
func (s *State) ForEach(fn func(spin.Configuration, complex128)) {
	for _, shard := range s.shards {
		for config, coeff := range shard {
			fn(config, coeff)
		}
	}
}

// Clear empties every shard.
func (s *State) Clear() {
	for i, shard := range s.shards {
		s.shards[i] = make(map[spin.Configuration]complex128, len(shard))
	}
}

// Len returns the total number of entries across all shards.
func (s *State) Len() int {
	n := 0
	for _, shard := range s.shards {
		n += len(shard)
	}
	return n
}

// EstimateHardMax returns the largest shard occupancy across the state,
// used as an allocation hint for the next iteration's target state. Go's
// maps do not expose an inspectable bucket count the way the original
// hash table did, so occupancy is used directly as the size hint.
func (s *State) EstimateHardMax() int {
	best := 0
	for _, shard := range s.shards {
		if len(shard) > best {
			best = len(shard)
		}
	}
	if best < 1 {
		best = 1
	}
	return best
}

type weightedEntry struct {
	config spin.Configuration
	coeff  complex128
	weight float64
}

func weight(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

func (s *State) collect() []weightedEntry {
	entries := make([]weightedEntry, 0, s.Len())
	s.ForEach(func(config spin.Configuration, coeff complex128) {
		entries = append(entries, weightedEntry{config: config, coeff: coeff, weight: weight(coeff)})
	})
	return entries
}

// Shrink truncates the state to at most soft_max entries using the active
// truncation policy. A state already within soft_max is left unchanged.
func (s *State) Shrink() error {
	if s.params.UseRandomSampling {
		return s.shrinkRandom()
	}
	return s.shrinkDeterministic()
}

func (s *State) shrinkDeterministic() error {
	n := s.Len()
	if n <= s.params.SoftMax {
		return nil
	}
	k := n - s.params.SoftMax
	entries := s.collect()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].weight < entries[j].weight
	})
	for i := 0; i < k; i++ {
		e := entries[i]
		delete(s.shards[s.shardIndex(e.config)], e.config)
	}
	return nil
}

func (s *State) shrinkRandom() error {
	n := s.Len()
	if n <= s.params.SoftMax {
		return nil
	}
	entries := s.collect()
	weights := make([]float64, len(entries))
	for i, e := range entries {
		weights[i] = e.weight
	}
	sampler, err := alias.New(weights)
	if err != nil {
		return qerr.Wrap(err, qerr.NumericError, "building alias sampler for random resample")
	}
	s.Clear()
	gen := rng.Global()
	for i := 0; i < s.params.SoftMax; i++ {
		e := entries[sampler.Sample(gen)]
		s.Insert(e.config, e.coeff)
	}
	return nil
}

// Normalize divides every coefficient by sqrt(sum |c|^2), failing if the
// total weight is zero.
func (s *State) Normalize() error {
	total := 0.0
	s.ForEach(func(_ spin.Configuration, coeff complex128) {
		total += weight(coeff)
	})
	if total == 0 {
		return qerr.New(qerr.NumericError, "cannot normalize: total weight is zero")
	}
	scale := 1.0 / math.Sqrt(total)
	for _, shard := range s.shards {
		for config, coeff := range shard {
			shard[config] = coeff * complex(scale, 0)
		}
	}
	return nil
}

// String renders basic diagnostics, useful in log lines and test
// failures.
func (s *State) String() string {
	return fmt.Sprintf("State{shards=%d, len=%d, soft_max=%d}", len(s.shards), s.Len(), s.params.SoftMax)
}
