package queue_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/fsrv/internal/queue"
)

func TestBounded_FIFOSingleProducer(t *testing.T) {
	q := queue.NewBounded[int](4)

	go func() {
		for i := range 20 {
			q.Push(i)
		}
	}()

	for i := range 20 {
		require.Equal(t, i, q.Pop())
	}
}

func TestBounded_PushBlocksWhenFull(t *testing.T) {
	q := queue.NewBounded[int](2)
	q.Push(1)
	q.Push(2)

	pushed := make(chan struct{})

	go func() {
		q.Push(3)
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push on a full queue did not block")
	case <-time.After(30 * time.Millisecond):
	}

	require.Equal(t, 1, q.Pop())

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push never unblocked after a slot freed")
	}
}

func TestBounded_PopBlocksWhenEmpty(t *testing.T) {
	q := queue.NewBounded[int](2)

	popped := make(chan int, 1)

	go func() {
		popped <- q.Pop()
	}()

	select {
	case <-popped:
		t.Fatal("pop on an empty queue did not block")
	case <-time.After(30 * time.Millisecond):
	}

	q.Push(42)

	select {
	case v := <-popped:
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("pop never unblocked after a push")
	}
}

func TestBounded_EachElementDeliveredOnceUnderConcurrentConsumers(t *testing.T) {
	const (
		producers   = 4
		perProducer = 250
		capacity    = 8
	)

	q := queue.NewBounded[int](capacity)

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)

		go func(base int) {
			defer wg.Done()

			for i := range perProducer {
				q.Push(base*perProducer + i)
			}
		}(p)
	}

	seen := make(chan int, producers*perProducer)

	var consumerWG sync.WaitGroup
	for range capacity {
		consumerWG.Add(1)

		go func() {
			defer consumerWG.Done()

			for range producers * perProducer / capacity {
				seen <- q.Pop()
			}
		}()
	}

	wg.Wait()
	consumerWG.Wait()
	close(seen)

	counts := make(map[int]int, producers*perProducer)
	for v := range seen {
		counts[v]++
	}

	require.Len(t, counts, producers*perProducer)

	for v, c := range counts {
		require.Equalf(t, 1, c, "element %d delivered %d times", v, c)
	}
}
