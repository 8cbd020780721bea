package pipeline

import (
	"sync"
	"testing"
	"time"
)

func TestBuffer_SendReceiveBatch(t *testing.T) {
	buf := NewBuffer[int](10)

	for i := 0; i < 5; i++ {
		if !buf.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}
	if buf.Len() != 5 {
		t.Errorf("Len() = %d, want 5", buf.Len())
	}

	got, ok := buf.ReceiveBatch(nil, 3)
	if !ok {
		t.Fatal("ReceiveBatch() returned false")
	}
	if len(got) != 3 {
		t.Fatalf("len(batch) = %d, want 3", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("batch[%d] = %d, want %d", i, v, i)
		}
	}

	got, ok = buf.ReceiveBatch(got[:0], 0)
	if !ok {
		t.Fatal("ReceiveBatch() returned false")
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("batch = %v, want [3 4]", got)
	}
	if buf.Len() != 0 {
		t.Errorf("Len() = %d, want 0", buf.Len())
	}
}

func TestBuffer_GrowsAt70Percent(t *testing.T) {
	buf := NewBuffer[int](10)

	for i := 0; i < 7; i++ {
		buf.Send(i)
	}

	stats := buf.Stats()
	if stats.Capacity <= 10 {
		t.Errorf("Capacity = %d, want growth after 70%% fill", stats.Capacity)
	}
	if stats.Resizes != 1 {
		t.Errorf("Resizes = %d, want 1", stats.Resizes)
	}
}

func TestBuffer_OrderSurvivesWrapAndGrow(t *testing.T) {
	buf := NewBuffer[int](4)

	// Advance head so the ring wraps before it grows.
	buf.Send(-1)
	buf.Send(-2)
	buf.ReceiveBatch(nil, 2)

	for i := 0; i < 100; i++ {
		buf.Send(i)
	}

	got, _ := buf.ReceiveBatch(nil, 0)
	if len(got) != 100 {
		t.Fatalf("len(batch) = %d, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("batch[%d] = %d, want %d", i, v, i)
		}
	}
	if stats := buf.Stats(); stats.TotalSent != 102 {
		t.Errorf("TotalSent = %d, want 102", stats.TotalSent)
	}
}

func TestBuffer_ReceiveBlocksUntilSend(t *testing.T) {
	buf := NewBuffer[int](10)
	received := make(chan []int, 1)

	go func() {
		got, ok := buf.ReceiveBatch(nil, 0)
		if ok {
			received <- got
		}
	}()

	time.Sleep(10 * time.Millisecond)
	buf.Send(42)

	select {
	case got := <-received:
		if len(got) != 1 || got[0] != 42 {
			t.Errorf("batch = %v, want [42]", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for receive")
	}
}

func TestBuffer_CloseDrainsThenStops(t *testing.T) {
	buf := NewBuffer[int](10)
	buf.Send(1)
	buf.Send(2)
	buf.Close()

	if buf.Send(3) {
		t.Error("Send() after Close() returned true")
	}

	got, ok := buf.ReceiveBatch(nil, 0)
	if !ok || len(got) != 2 {
		t.Fatalf("ReceiveBatch() = %v, %v, want 2 items and true", got, ok)
	}

	_, ok = buf.ReceiveBatch(nil, 0)
	if ok {
		t.Error("ReceiveBatch() on closed empty buffer returned true")
	}
}

func TestBuffer_CloseWakesReceiver(t *testing.T) {
	buf := NewBuffer[int](10)
	done := make(chan bool, 1)

	go func() {
		_, ok := buf.ReceiveBatch(nil, 0)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	buf.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("ReceiveBatch() returned true after Close()")
		}
	case <-time.After(time.Second):
		t.Fatal("receiver not woken by Close()")
	}
}

func TestBuffer_ConcurrentProducerConsumer(t *testing.T) {
	buf := NewBuffer[int](8)
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer buf.Close()
		for i := 0; i < total; i++ {
			buf.Send(i)
		}
	}()

	next := 0
	batch := make([]int, 0, 64)
	for {
		var ok bool
		batch, ok = buf.ReceiveBatch(batch[:0], 64)
		if !ok {
			break
		}
		for _, v := range batch {
			if v != next {
				t.Fatalf("received %d, want %d", v, next)
			}
			next++
		}
	}
	wg.Wait()

	if next != total {
		t.Errorf("received %d items, want %d", next, total)
	}
}
