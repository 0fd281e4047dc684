package state

import (
	"runtime"
	"sync/atomic"

	"github.com/twesterhout/walking-lanczos/spin"
)

// queueCapacity is the bounded SPSC ring buffer's capacity, a power of
// two so the ring's index arithmetic reduces to a mask.
const queueCapacity = 1024

type message struct {
	config spin.Configuration
	coeff  complex128
}

// spscQueue is a bounded, lock-free single-producer/single-consumer ring
// buffer. It replaces the boost::lockfree::spsc_queue the original engine
// used, translated onto sync/atomic's sequentially-consistent loads and
// stores.
type spscQueue struct {
	buf  [queueCapacity]message
	mask uint64

	head atomic.Uint64 // next slot the consumer will read
	tail atomic.Uint64 // next slot the producer will write
}

func newSPSCQueue() *spscQueue {
	return &spscQueue{mask: queueCapacity - 1}
}

// push attempts to enqueue msg, returning false if the queue is full.
func (q *spscQueue) push(msg message) bool {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail-head == queueCapacity {
		return false
	}
	q.buf[tail&q.mask] = msg
	q.tail.Store(tail + 1)
	return true
}

// pop attempts to dequeue a message, returning false if the queue is
// empty.
func (q *spscQueue) pop() (message, bool) {
	head := q.head.Load()
	tail := q.tail.Load()
	if head == tail {
		return message{}, false
	}
	msg := q.buf[head&q.mask]
	q.head.Store(head + 1)
	return msg, true
}

func (q *spscQueue) empty() bool {
	return q.head.Load() == q.tail.Load()
}

// updater owns one shard's map exclusively while it is running, draining
// its queue and additively merging messages into the shard.
type updater struct {
	table map[spin.Configuration]complex128
	queue *spscQueue
	done  atomic.Bool
}

func newUpdater(table map[spin.Configuration]complex128) *updater {
	u := &updater{table: table, queue: newSPSCQueue()}
	u.done.Store(true)
	return u
}

func (u *updater) unsafeProcess(msg message) {
	if c, ok := u.table[msg.config]; ok {
		u.table[msg.config] = c + msg.coeff
	} else {
		u.table[msg.config] = msg.coeff
	}
}

// run is the worker loop: drain the queue until done is set, then drain
// whatever remains once more so no accepted message is lost.
func (u *updater) run() {
	for !u.done.Load() {
		drained := false
		for {
			msg, ok := u.queue.pop()
			if !ok {
				break
			}
			u.unsafeProcess(msg)
			drained = true
		}
		if !drained {
			runtime.Gosched()
		}
	}
	for {
		msg, ok := u.queue.pop()
		if !ok {
			break
		}
		u.unsafeProcess(msg)
	}
}

func (u *updater) start() {
	u.done.Store(false)
}

func (u *updater) stop() {
	u.done.Store(true)
}

// push enqueues msg, spinning while the queue is saturated. It must only
// be called while the updater is running.
func (u *updater) push(msg message) {
	for !u.queue.push(msg) {
		runtime.Gosched()
	}
}
