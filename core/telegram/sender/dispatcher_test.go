package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
			defer wg.Done()
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	wg.Wait()
	d.Close()

	if ran.Load() != 8 {
		t.Fatalf("ran = %d, expected 8", ran.Load())
	}
}

func TestDispatcherEnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()

	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, expected ErrQueueClosed", err)
	}
}

func TestDispatcherConcurrentEnqueueAndClose(t *testing.T) {
	// A send racing Close must resolve to either delivery or ErrQueueClosed,
	// never a panic on the closed channel.
	for i := 0; i < 50; i++ {
		d := NewDispatcher(Options{Workers: 2, QueueSize: 4})

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
					if err != nil && !errors.Is(err, ErrQueueClosed) && !errors.Is(err, ErrQueueFull) {
						t.Errorf("enqueue: %v", err)
						return
					}
				}
			}()
		}
		d.Close()
		wg.Wait()
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	defer d.Close()

	block := make(chan struct{})
	release := func() { close(block) }
	defer release()

	// First job occupies the single worker.
	if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		<-block
		return nil
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// Fill the queue, then expect saturation.
	sawFull := false
	for i := 0; i < 3; i++ {
		err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
		if errors.Is(err, ErrQueueFull) {
			sawFull = true
			break
		}
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if !sawFull {
		t.Fatal("expected ErrQueueFull once the queue saturated")
	}
}
