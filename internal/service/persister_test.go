package service

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPersisterAppliesInOrder(t *testing.T) {
	p := newPersister()
	defer p.close()

	var got []int
	for i := 0; i < 50; i++ {
		p.submit(1, "append", func() error {
			got = append(got, i)
			return nil
		})
	}
	p.submit(1, "fail", func() error { return errors.New("boom") })
	p.waitFor(1)

	if len(got) != 50 {
		t.Fatalf("applied %d writes, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("write %d = %d, want %d", i, v, i)
		}
	}
}

func TestPersisterWaitsOnlyForOwnWrites(t *testing.T) {
	p := newPersister()
	release := make(chan struct{})
	defer p.close()
	defer close(release)

	var mine bool
	p.submit(2, "mine", func() error {
		mine = true
		return nil
	})
	p.submit(1, "blocked", func() error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		p.waitFor(2)
		p.waitFor(3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waitFor() blocked on another learner's write")
	}
	if !mine {
		t.Error("waitFor() returned before the learner's write was applied")
	}
}

func TestPersisterDropsWhenFull(t *testing.T) {
	p := newPersister()

	started := make(chan struct{})
	release := make(chan struct{})
	p.submit(1, "first", func() error {
		close(started)
		<-release
		return nil
	})
	<-started

	var mu sync.Mutex
	applied := 0
	for i := 0; i < persistQueueSize+5; i++ {
		p.submit(1, "fill", func() error {
			mu.Lock()
			applied++
			mu.Unlock()
			return nil
		})
	}
	close(release)
	p.waitFor(1)
	p.close()

	if applied != persistQueueSize {
		t.Errorf("applied %d writes, want %d", applied, persistQueueSize)
	}
}

func TestPersisterConcurrentSubmitAndWait(t *testing.T) {
	p := newPersister()

	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := make(map[int64]int)
	for learner := int64(1); learner <= 8; learner++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				p.submit(learner, "count", func() error {
					mu.Lock()
					counts[learner]++
					mu.Unlock()
					return nil
				})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				p.waitFor(learner)
			}
		}()
	}
	wg.Wait()
	p.wait()

	for learner := int64(1); learner <= 8; learner++ {
		if counts[learner] != 20 {
			t.Errorf("learner %d applied %d writes, want 20", learner, counts[learner])
		}
	}
	p.close()
}

func TestPersisterClose(t *testing.T) {
	p := newPersister()
	ran := false
	p.submit(1, "before close", func() error {
		ran = true
		return nil
	})
	p.close()
	p.close()

	if !ran {
		t.Error("close() did not drain queued writes")
	}
	p.submit(1, "after close", func() error {
		t.Error("write ran after close")
		return nil
	})
	p.waitFor(1)
}
