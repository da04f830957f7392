package transport

import "sync"

// fakeTun is a minimal tunio.Device test double that records writes and
// never has data queued for Read (tests drive the read side directly via
// enqueueDatagram, bypassing RunTunnelReader).
type fakeTun struct {
	mu      sync.Mutex
	written [][]byte
}

func (f *fakeTun) Read(p []byte) (int, error) {
	return 0, nil
}

func (f *fakeTun) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, append([]byte(nil), p...))
	return nil
}

func (f *fakeTun) Close() error {
	return nil
}

func newTestEndpoint() *Endpoint {
	return NewEndpoint(Config{RFDelayUs: 5000}, nil, &fakeTun{})
}
