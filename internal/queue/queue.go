// Package queue implements the work-queue coordinator (C6): a bounded
// multi-producer/multi-consumer directory queue that solves "is the
// recursive walk finished?" without a timing-based heuristic. Grounded
// on other_examples ivoronin-dupedog's walkerSem/walkerWg fan-out,
// adapted from goroutine-per-directory to an explicit worker-pool
// dequeue, since a bounded worker count needs an explicit busy-worker
// invariant rather than a WaitGroup.
package queue

import (
	"sync"
	"time"
)

// Coordinator is a bounded MPMC directory queue.
type Coordinator struct {
	mu           sync.Mutex
	items        []string
	totalWorkers int
	busyWorkers  int
	completed    bool
}

// New builds an empty Coordinator, optionally seeded with roots.
func New(roots ...string) *Coordinator {
	c := &Coordinator{}
	c.items = append(c.items, roots...)
	return c
}

// Enqueue adds an item to the tail of the queue. Safe to call while
// workers are dequeuing (subdirectories are enqueued mid-processing).
func (c *Coordinator) Enqueue(item string) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.completed = false
	c.mu.Unlock()
}

// AddWorker registers a worker with the coordinator. Must be paired with
// RemoveWorker on worker exit.
func (c *Coordinator) AddWorker() {
	c.mu.Lock()
	c.totalWorkers++
	c.mu.Unlock()
}

// RemoveWorker unregisters a worker.
func (c *Coordinator) RemoveWorker() {
	c.mu.Lock()
	c.totalWorkers--
	c.mu.Unlock()
}

// pollInterval is the sleep-and-retry backoff between empty-queue polls.
const pollInterval = time.Millisecond

// DequeueForWorker blocks until an item is available, or until the queue
// is provably drained: busy_workers == 0 and the queue is empty, at
// which point it marks the coordinator completed and returns ok=false.
// A worker only exits once no other worker could possibly still enqueue
// work.
func (c *Coordinator) DequeueForWorker() (item string, ok bool) {
	for {
		c.mu.Lock()
		if len(c.items) > 0 {
			item = c.items[0]
			c.items = c.items[1:]
			c.busyWorkers++
			c.mu.Unlock()
			return item, true
		}
		if c.busyWorkers == 0 {
			c.completed = true
			c.mu.Unlock()
			return "", false
		}
		c.mu.Unlock()
		time.Sleep(pollInterval)
	}
}

// WorkerFinishedItem decrements the busy-worker count after a worker has
// finished processing (and possibly enqueued) an item.
func (c *Coordinator) WorkerFinishedItem() {
	c.mu.Lock()
	c.busyWorkers--
	c.mu.Unlock()
}

// Completed reports whether the coordinator has observed the queue
// drain with no busy workers.
func (c *Coordinator) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Len reports the current queue depth, for diagnostics/progress reporting.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
