package lifecycle

import (
	"sync"
	"testing"
	"time"
)

func resolved(wg *WaitGroup) bool {
	select {
	case <-wg.Done():
		return true
	default:
		return false
	}
}

func TestWaitGroup_Empty(t *testing.T) {
	wg := NewWaitGroup()
	if !resolved(wg) {
		t.Error("wait group with no permits should resolve immediately")
	}
	if wg.Count() != 0 {
		t.Errorf("Count() = %d, want 0", wg.Count())
	}
}

func TestWaitGroup_PermitAndClone(t *testing.T) {
	wg := NewWaitGroup()

	p1 := wg.Acquire()
	p2 := p1.Clone()
	if got := wg.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}

	done := wg.Done()
	if resolved(wg) {
		t.Fatal("wait group resolved with outstanding permits")
	}

	p1.Release()
	select {
	case <-done:
		t.Fatal("wait group resolved after first release")
	default:
	}

	p2.Release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait group did not resolve after last release")
	}
}

func TestWaitGroup_ReleaseIsIdempotent(t *testing.T) {
	wg := NewWaitGroup()
	p1 := wg.Acquire()
	p2 := wg.Acquire()

	p1.Release()
	p1.Release()

	if got := wg.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
	if resolved(wg) {
		t.Error("double release must not resolve the wait group")
	}

	p2.Release()
	if !resolved(wg) {
		t.Error("wait group should resolve after every permit is released")
	}
}

func TestWaitGroup_Wait(t *testing.T) {
	wg := NewWaitGroup()
	p := wg.Acquire()

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Release()
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return")
	}
}

func TestWaitGroup_Reuse(t *testing.T) {
	wg := NewWaitGroup()

	p := wg.Acquire()
	p.Release()
	wg.Wait()

	p = wg.Acquire()
	if resolved(wg) {
		t.Fatal("wait group resolved with a new outstanding permit")
	}
	p.Release()
	if !resolved(wg) {
		t.Error("wait group should resolve again")
	}
}

func TestWaitGroup_Concurrent(t *testing.T) {
	for round := 0; round < 20; round++ {
		wg := NewWaitGroup()
		root := wg.Acquire()

		var workers sync.WaitGroup
		for i := 0; i < 8; i++ {
			p := root.Clone()
			workers.Add(1)
			go func() {
				defer workers.Done()
				defer p.Release()
				for j := 0; j < 50; j++ {
					p.Clone().Release()
				}
			}()
		}

		waited := make(chan struct{})
		go func() {
			wg.Wait()
			close(waited)
		}()

		workers.Wait()
		select {
		case <-waited:
			t.Fatalf("round %d: resolved while a permit was outstanding", round)
		default:
		}

		root.Release()
		select {
		case <-waited:
		case <-time.After(2 * time.Second):
			t.Fatalf("round %d: Wait() hung after every permit was released", round)
		}
		if got := wg.Count(); got != 0 {
			t.Fatalf("round %d: Count() = %d, want 0", round, got)
		}
	}
}
