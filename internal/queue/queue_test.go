package queue

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDequeueForWorkerDrains(t *testing.T) {
	q := New("a", "b", "c")
	q.AddWorker()
	defer q.RemoveWorker()

	var got []string
	for {
		item, ok := q.DequeueForWorker()
		if !ok {
			break
		}
		got = append(got, item)
		q.WorkerFinishedItem()
	}

	if len(got) != 3 {
		t.Fatalf("got %v, want 3 items", got)
	}
	if !q.Completed() {
		t.Error("expected Completed() true after drain")
	}
}

func TestDequeueWaitsForLateEnqueue(t *testing.T) {
	q := New("root")
	q.AddWorker()
	q.AddWorker()
	defer q.RemoveWorker()
	defer q.RemoveWorker()

	var processed int32
	var wg sync.WaitGroup
	wg.Add(2)

	worker := func() {
		defer wg.Done()
		for {
			item, ok := q.DequeueForWorker()
			if !ok {
				return
			}
			if item == "root" {
				q.Enqueue("child-1")
				q.Enqueue("child-2")
			}
			atomic.AddInt32(&processed, 1)
			q.WorkerFinishedItem()
		}
	}

	go worker()
	go worker()
	wg.Wait()

	if processed != 3 {
		t.Fatalf("processed = %d, want 3 (root + 2 children)", processed)
	}
}

func TestNoWorkersEmptyQueueCompletesImmediately(t *testing.T) {
	q := New()
	_, ok := q.DequeueForWorker()
	if ok {
		t.Fatal("expected no item from an empty queue with no busy workers")
	}
	if !q.Completed() {
		t.Error("expected Completed() true")
	}
}
