package service

import (
	"log"
	"sync"
)

const persistQueueSize = 256

type persistJob struct {
	desc string
	fn   func() error
}

// persister applies best-effort writes in submission order on one goroutine.
// Failures are logged and never reach the caller.
//
// Each accepted job gets the next sequence number. The writer counts applied
// jobs, so a reader waits only until the last write of its own learner is done.
type persister struct {
	jobs chan persistJob
	done chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	seq     uint64
	applied uint64
	last    map[int64]uint64
	closed  bool
}

func newPersister() *persister {
	p := &persister{
		jobs: make(chan persistJob, persistQueueSize),
		done: make(chan struct{}),
		last: make(map[int64]uint64),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

func (p *persister) run() {
	defer close(p.done)
	for job := range p.jobs {
		if err := job.fn(); err != nil {
			log.Printf("Warning: failed to %s: %v", job.desc, err)
		}
		p.mu.Lock()
		p.applied++
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// submit queues fn for learnerID without blocking. A full queue drops the write.
func (p *persister) submit(learnerID int64, desc string, fn func() error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		log.Printf("Warning: persistence stopped, dropped: %s", desc)
		return
	}

	// enqueue and numbering happen under mu so sequence order is queue order
	select {
	case p.jobs <- persistJob{desc: desc, fn: fn}:
		p.seq++
		p.last[learnerID] = p.seq
	default:
		log.Printf("Warning: persistence queue full, dropped: %s", desc)
	}
}

// waitFor blocks until every write queued for learnerID so far has been applied
func (p *persister) waitFor(learnerID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	target, ok := p.last[learnerID]
	if !ok {
		return
	}
	p.waitUntil(target)
	if p.last[learnerID] <= p.applied {
		delete(p.last, learnerID)
	}
}

// wait blocks until every write queued so far has been applied
func (p *persister) wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waitUntil(p.seq)
}

func (p *persister) waitUntil(target uint64) {
	for p.applied < target {
		p.cond.Wait()
	}
}

// forget drops the bookkeeping for a learner once their writes are applied
func (p *persister) forget(learnerID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last[learnerID] <= p.applied {
		delete(p.last, learnerID)
	}
}

// close drains the queue and stops the writer
func (p *persister) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.jobs)
	<-p.done
}
