package otp

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdown_RunsToCompletion(t *testing.T) {
	c := NewCountdown(5 * time.Millisecond)
	done := make(chan struct{})
	var ticks atomic.Int32
	c.Start(3, func(int) { ticks.Add(1) }, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("отсчёт не завершился")
	}
	if ticks.Load() != 2 {
		t.Fatalf("ожидали 2 промежуточных тика, получили %d", ticks.Load())
	}
	if c.Running() {
		t.Fatal("отсчёт должен быть остановлен")
	}
}

func TestCountdown_RestartCancelsPrevious(t *testing.T) {
	c := NewCountdown(5 * time.Millisecond)
	var firstDone atomic.Bool
	c.Start(2, nil, func() { firstDone.Store(true) })

	secondDone := make(chan struct{})
	c.Start(4, nil, func() { close(secondDone) })

	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("второй отсчёт не завершился")
	}
	if firstDone.Load() {
		t.Fatal("первый отсчёт не должен был сработать после перезапуска")
	}
}

func TestCountdown_Cancel(t *testing.T) {
	c := NewCountdown(5 * time.Millisecond)
	var fired atomic.Bool
	c.Start(2, nil, func() { fired.Store(true) })
	c.Cancel()
	time.Sleep(40 * time.Millisecond)
	if fired.Load() || c.Running() {
		t.Fatal("отменённый отсчёт не должен срабатывать")
	}
	// повторная отмена безопасна
	c.Cancel()
}
