package otp

import (
	"sync"
	"time"
)

// Countdown — отменяемый отсчёт до повторной отправки кода.
// Start всегда гасит предыдущий запуск, так что два таймера одновременно не тикают.
type Countdown struct {
	mu      sync.Mutex
	gen     uint64
	stop    chan struct{}
	left    int
	running bool
	step    time.Duration
}

// NewCountdown: step — длина одного "тика" (в проде секунда).
func NewCountdown(step time.Duration) *Countdown {
	if step <= 0 {
		step = time.Second
	}
	return &Countdown{step: step}
}

// Start запускает отсчёт на ticks шагов. onTick получает оставшееся число шагов,
// onDone вызывается один раз по окончании (но не при отмене).
func (c *Countdown) Start(ticks int, onTick func(left int), onDone func()) {
	c.mu.Lock()
	c.cancelLocked()
	c.gen++
	gen := c.gen
	stop := make(chan struct{})
	c.stop = stop
	c.left = ticks
	c.running = ticks > 0
	c.mu.Unlock()

	if ticks <= 0 {
		if onDone != nil {
			onDone()
		}
		return
	}

	go func() {
		t := time.NewTicker(c.step)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				c.mu.Lock()
				if c.gen != gen {
					c.mu.Unlock()
					return
				}
				c.left--
				left := c.left
				if left <= 0 {
					c.running = false
					c.stop = nil
				}
				c.mu.Unlock()

				if left > 0 {
					if onTick != nil {
						onTick(left)
					}
					continue
				}
				if onDone != nil {
					onDone()
				}
				return
			}
		}
	}()
}

func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Countdown) cancelLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.gen++
	c.running = false
	c.left = 0
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Countdown) Left() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}
