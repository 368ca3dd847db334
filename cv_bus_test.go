package main

import (
	"sync"
	"testing"
	"time"
)

// TestCVBus_ConcurrentWriteRead stresses the writer/reader race between
// Write (vision thread) and Read (audio thread). No assertions: the race
// detector is the oracle. Run with: go test -race -run TestCVBus_ConcurrentWriteRead
func TestCVBus_ConcurrentWriteRead(t *testing.T) {
	bus := NewCVBus()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Go(func() {
		var frame [cvSlotCount]float32
		var muted [cvSlotCount]bool
		iter := float32(0)
		for {
			select {
			case <-stop:
				return
			default:
			}
			frame[CVEnv1] = iter
			bus.Write(frame, muted)
			bus.PushTrigger(TriggerEnv1)
			iter++
		}
	})

	wg.Go(func() {
		scratch := make([]TriggerKind, 0, triggerQueueCapacity)
		for {
			select {
			case <-stop:
				return
			default:
			}
			bus.Read()
			scratch = bus.DrainTriggers(scratch)
		}
	})

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}

// TestCVBus_ReadNeverTorn verifies every published frame is observed whole:
// all five slots carry the same generation tag, never a mix of two writes.
func TestCVBus_ReadNeverTorn(t *testing.T) {
	bus := NewCVBus()
	var muted [cvSlotCount]bool

	for gen := float32(1); gen <= 1000; gen++ {
		var frame [cvSlotCount]float32
		for i := range frame {
			frame[i] = gen
		}
		bus.Write(frame, muted)

		values, _ := bus.Read()
		first := values[0]
		for i, v := range values {
			if v != first {
				t.Fatalf("torn read at generation %v: slot %d = %v, slot 0 = %v", gen, i, v, first)
			}
		}
	}
}

func TestTriggerQueue_DropsOldestWhenFull(t *testing.T) {
	bus := NewCVBus()
	for i := 0; i < triggerQueueCapacity+10; i++ {
		bus.PushTrigger(TriggerEnv2)
	}

	drained := bus.DrainTriggers(nil)
	if len(drained) != triggerQueueCapacity {
		t.Fatalf("expected queue capped at %d, got %d", triggerQueueCapacity, len(drained))
	}
}

func TestTriggerQueue_PreservesOrder(t *testing.T) {
	bus := NewCVBus()
	seq := []TriggerKind{TriggerEnv1, TriggerEnv2, TriggerEnv3Decel, TriggerEnv4Accel, TriggerEnv1}
	for _, k := range seq {
		bus.PushTrigger(k)
	}

	drained := bus.DrainTriggers(nil)
	if len(drained) != len(seq) {
		t.Fatalf("expected %d triggers, got %d", len(seq), len(drained))
	}
	for i, k := range seq {
		if drained[i] != k {
			t.Fatalf("trigger %d: expected %v, got %v", i, k, drained[i])
		}
	}
}
