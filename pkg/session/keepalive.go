package session

import "sync"

// keepalive owns the ticker that drives periodic keepalive writes.
// A session holds at most one, and only while open.
type keepalive struct {
	ticker Ticker
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func startKeepalive(ticker Ticker, send func()) *keepalive {
	k := &keepalive{
		ticker: ticker,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go k.run(send)
	return k
}

func (k *keepalive) run(send func()) {
	defer close(k.done)

	for {
		select {
		case <-k.ticker.Chan():
			select {
			case <-k.stop:
				return
			default:
			}
			send()

		case <-k.stop:
			return
		}
	}
}

// Stop cancels the ticker and waits for the send loop to exit.
// It is safe to call more than once.
func (k *keepalive) Stop() {
	k.once.Do(func() {
		k.ticker.Stop()
		close(k.stop)
	})
	<-k.done
}
