package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestKeepalive_SendsOnTick(t *testing.T) {
	clock := newFakeClock()
	var sends atomic.Int32
	k := startKeepalive(clock.NewTicker(10*time.Second), func() { sends.Add(1) })
	defer k.Stop()

	clock.Advance(25 * time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for sends.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := sends.Load(); got != 2 {
		t.Errorf("sends = %d, want 2", got)
	}
}

func TestKeepalive_StopIdempotent(t *testing.T) {
	clock := newFakeClock()
	var sends atomic.Int32
	k := startKeepalive(clock.NewTicker(10*time.Second), func() { sends.Add(1) })

	k.Stop()
	k.Stop()

	clock.Advance(time.Minute)
	if got := sends.Load(); got != 0 {
		t.Errorf("sends after Stop = %d, want 0", got)
	}
	if !clock.tickers[0].isStopped() {
		t.Error("ticker not stopped")
	}
}
