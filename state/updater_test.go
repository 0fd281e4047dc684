package state

import (
	"fmt"
	"math"
	"testing"

	"github.com/twesterhout/walking-lanczos/spin"
)

func TestBuilderAccumulatesAdditively(t *testing.T) {
	t.Parallel()
	target, err := New(Params{SoftMax: 4, HardMax: 8, Shards: 4})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(target)
	b.Start()

	c := mustConfig(t, "00000001")
	const pushes = 1000
	for i := 0; i < pushes; i++ {
		b.Push(c, 1)
	}
	if err := b.Stop(); err != nil {
		t.Fatal(err)
	}

	got, ok := target.Find(c)
	if !ok {
		t.Fatalf("expected configuration to be present after Stop")
	}
	if got != complex(pushes, 0) {
		t.Fatalf("Find() = %v, want %v", got, complex(pushes, 0))
	}
}

func TestBuilderAccumulationIsScheduleIndependent(t *testing.T) {
	t.Parallel()
	configs := []spin.Configuration{
		mustConfig(t, "00000000"),
		mustConfig(t, "00000001"),
		mustConfig(t, "00000010"),
		mustConfig(t, "00000011"),
	}

	run := func(order []int) complex128 {
		target, err := New(Params{SoftMax: 4, HardMax: 8, Shards: 4})
		if err != nil {
			t.Fatal(err)
		}
		b := NewBuilder(target)
		b.Start()
		for _, i := range order {
			b.Push(configs[i%len(configs)], complex(float64(i%7)+1, 0))
		}
		if err := b.Stop(); err != nil {
			t.Fatal(err)
		}
		var total complex128
		target.ForEach(func(_ spin.Configuration, c complex128) { total += c })
		return total
	}

	orderA := make([]int, 400)
	for i := range orderA {
		orderA[i] = i
	}
	orderB := make([]int, len(orderA))
	for i := range orderB {
		orderB[i] = orderA[len(orderA)-1-i]
	}

	totalA := run(orderA)
	totalB := run(orderB)
	if math.Abs(real(totalA)-real(totalB)) > 1e-9 || math.Abs(imag(totalA)-imag(totalB)) > 1e-9 {
		t.Fatalf("accumulation depends on schedule: %v vs %v", totalA, totalB)
	}
}

func TestBuilderSingleProducerRoutesAcrossManyShards(t *testing.T) {
	t.Parallel()
	target, err := New(Params{SoftMax: 64, HardMax: 16, Shards: 8})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(target)
	b.Start()

	configs := make([]spin.Configuration, 32)
	for i := range configs {
		configs[i] = mustConfig(t, fmt.Sprintf("%08b", i))
	}
	for i := 0; i < 800; i++ {
		b.Push(configs[i%len(configs)], 1)
	}
	if err := b.Stop(); err != nil {
		t.Fatal(err)
	}

	total := 0.0
	target.ForEach(func(_ spin.Configuration, c complex128) { total += real(c) })
	if total != 800 {
		t.Fatalf("total pushed mass = %v, want %v", total, 800)
	}
}

func TestBuilderPushOutsideSessionPanics(t *testing.T) {
	t.Parallel()
	target, err := New(Params{SoftMax: 4, HardMax: 4, Shards: 1})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(target)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Push before Start to panic")
		}
	}()
	b.Push(mustConfig(t, "0"), 1)
}
