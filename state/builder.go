package state

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/twesterhout/walking-lanczos/qerr"
	"github.com/twesterhout/walking-lanczos/spin"
)

// Builder is the producer-side façade onto a target State: it owns one
// updater goroutine per shard and routes pushed (config, coeff) deltas to
// the correct one.
//
// Exactly one Start/.../Stop bracket is expected per Builder use;
// reusing a Builder after Stop requires a fresh Start.
type Builder struct {
	target   *State
	updaters []*updater
	group    *errgroup.Group
	running  bool
}

// NewBuilder wraps target, creating one updater per shard.
func NewBuilder(target *State) *Builder {
	updaters := make([]*updater, len(target.shards))
	for i, shard := range target.shards {
		updaters[i] = newUpdater(shard)
	}
	return &Builder{target: target, updaters: updaters}
}

// Start launches every shard's updater goroutine.
func (b *Builder) Start() {
	if b.running {
		panic("state: Builder.Start called while already running")
	}
	b.group = new(errgroup.Group)
	for _, u := range b.updaters {
		u.start()
		u := u
		b.group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = qerr.Wrapf(fmt.Errorf("%v", r), qerr.Internal, "shard updater panicked")
				}
			}()
			u.run()
			return nil
		})
	}
	b.running = true
}

// Stop signals every updater to drain and finish, then waits for them.
// It returns the first error surfaced by any updater goroutine, or nil if
// all completed cleanly. After Stop returns, target is fully consistent.
func (b *Builder) Stop() error {
	if !b.running {
		panic("state: Builder.Stop called while not running")
	}
	for _, u := range b.updaters {
		u.stop()
	}
	err := b.group.Wait()
	b.running = false
	return err
}

// Push routes (config, coeff) to the updater owning config's shard. It
// must only be called between Start and Stop.
func (b *Builder) Push(config spin.Configuration, coeff complex128) {
	if !b.running {
		panic("state: Builder.Push called outside a Start/Stop session")
	}
	idx := b.target.shardIndex(config)
	b.updaters[idx].push(message{config: config, coeff: coeff})
}
