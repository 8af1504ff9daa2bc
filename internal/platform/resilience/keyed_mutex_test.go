package resilience

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	m := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("group-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("unexpected counter: got=%d want=50", counter)
	}
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	m := NewKeyedMutex()
	unlockA := m.Lock("group-a")

	done := make(chan struct{})
	go func() {
		unlockB := m.Lock("group-b")
		unlockB()
		close(done)
	}()

	<-done
	unlockA()
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	t.Parallel()

	m := NewKeyedMutex()
	unlock := m.Lock("group-1")
	unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.locks) != 0 {
		t.Fatalf("expected lock table to be empty, got %d entries", len(m.locks))
	}
}
