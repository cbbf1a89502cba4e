package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushTryPopFIFO(t *testing.T) {
	q := New[string]()
	assert.True(t, q.IsEmpty())

	q.Push("a")
	q.Push("b")
	q.Push("c")
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	got, ok := q.TryPop()
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.True(t, q.IsEmpty())
}

func TestPopOnEmptyPanics(t *testing.T) {
	q := New[int]()
	assert.PanicsWithValue(t, ErrEmpty, func() { q.Pop() })

	q.Push(7)
	assert.Equal(t, 7, q.Pop())
}

func TestPushAfterClosePanics(t *testing.T) {
	q := New[int]()
	q.Close()
	q.Close()
	assert.True(t, q.Closed())
	assert.PanicsWithValue(t, ErrClosed, func() { q.Push(1) })
}

func TestNextDrainsBeforeReportingClosed(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Close()

	v, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.Next()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = q.Next()
	assert.False(t, ok)
}

func TestNextBlocksUntilPushOrClose(t *testing.T) {
	q := New[int]()
	got := make(chan int, 1)
	done := make(chan bool, 1)

	go func() {
		v, ok := q.Next()
		if ok {
			got <- v
		}
		_, ok = q.Next()
		done <- ok
	}()

	select {
	case <-got:
		t.Fatal("Next returned before anything was pushed")
	case <-time.After(20 * time.Millisecond):
	}

	q.Push(42)
	assert.Equal(t, 42, <-got)

	q.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not wake the blocked consumer")
	}
}

func TestCompactionKeepsOrder(t *testing.T) {
	q := New[int]()
	next := 0
	for i := 0; i < 500; i++ {
		q.Push(i)
		if i%3 == 0 {
			assert.Equal(t, next, q.Pop())
			next++
		}
	}
	for !q.IsEmpty() {
		assert.Equal(t, next, q.Pop())
		next++
	}
	assert.Equal(t, 500, next)
}

func TestConcurrentProducersConsumers(t *testing.T) {
	tests := []struct {
		name      string
		items     int
		producers int
		consumers int
	}{
		{name: "no items", items: 0, producers: 1, consumers: 1},
		{name: "single consumer", items: 1000, producers: 4, consumers: 1},
		{name: "many consumers", items: 5000, producers: 3, consumers: 8},
		{name: "more consumers than items", items: 5, producers: 2, consumers: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New[int]()

			var producers sync.WaitGroup
			for p := 0; p < tt.producers; p++ {
				producers.Add(1)
				go func(p int) {
					defer producers.Done()
					for i := p; i < tt.items; i += tt.producers {
						q.Push(i)
					}
				}(p)
			}
			go func() {
				producers.Wait()
				q.Close()
			}()

			var mu sync.Mutex
			seen := make(map[int]int, tt.items)
			var consumers sync.WaitGroup
			for c := 0; c < tt.consumers; c++ {
				consumers.Add(1)
				go func() {
					defer consumers.Done()
					for {
						v, ok := q.Next()
						if !ok {
							return
						}
						mu.Lock()
						seen[v]++
						mu.Unlock()
					}
				}()
			}
			consumers.Wait()

			require.Len(t, seen, tt.items)
			for i := 0; i < tt.items; i++ {
				assert.Equal(t, 1, seen[i], "item %d delivered %d times", i, seen[i])
			}
		})
	}
}

func TestConcurrentTryPopPolling(t *testing.T) {
	const total = 2000
	q := New[int]()
	for i := 0; i < total; i++ {
		q.Push(i)
	}

	var mu sync.Mutex
	seen := make(map[int]bool, total)
	var wg sync.WaitGroup
	for c := 0; c < 6; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, ok := q.TryPop()
				if !ok {
					return
				}
				mu.Lock()
				assert.False(t, seen[v], "duplicate item %d", v)
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, total)
	assert.True(t, q.IsEmpty())
}
