package fleet

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeHandle is a test implementation of Handle.
type fakeHandle struct {
	mu          sync.Mutex
	id          string
	state       State
	startErr    error
	teardownErr error
	infoErr     error
	statsErr    error
	pollOK      bool
	starts      int
	stops       int
	teardowns   int
}

func newFakeHandle(id string) *fakeHandle {
	return &fakeHandle{id: id, state: StateConnected, pollOK: true}
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *fakeHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
	return h.startErr
}

func (h *fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
	h.state = StateDisconnected
}

func (h *fakeHandle) Poll() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pollOK
}

func (h *fakeHandle) setPollOK(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pollOK = ok
}

func (h *fakeHandle) Info() (InfoRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.infoErr != nil {
		return InfoRecord{}, h.infoErr
	}
	return InfoRecord{DeviceID: h.id, State: string(h.state), CollectedAt: time.Now()}, nil
}

func (h *fakeHandle) Stats() (StatsRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.statsErr != nil {
		return StatsRecord{}, h.statsErr
	}
	return StatsRecord{DeviceID: h.id, CollectedAt: time.Now()}, nil
}

func (h *fakeHandle) Teardown() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teardowns++
	h.state = StateDisconnected
	return h.teardownErr
}

func (h *fakeHandle) stopCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stops
}

func (h *fakeHandle) teardownCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.teardowns
}

// fakeFactory builds fakeHandles and remembers every handle it produced,
// keyed by device id.
type fakeFactory struct {
	mu      sync.Mutex
	handles map[string][]*fakeHandle
	prepare func(h *fakeHandle)
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{handles: make(map[string][]*fakeHandle)}
}

func (f *fakeFactory) new(id string) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := newFakeHandle(id)
	if f.prepare != nil {
		f.prepare(h)
	}
	f.handles[id] = append(f.handles[id], h)
	return h
}

func (f *fakeFactory) latest(id string) *fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	hs := f.handles[id]
	if len(hs) == 0 {
		return nil
	}
	return hs[len(hs)-1]
}

func (f *fakeFactory) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles[id])
}

// fakeSink records published telemetry.
type fakeSink struct {
	mu    sync.Mutex
	infos []InfoRecord
	stats []StatsRecord
}

func (s *fakeSink) PublishDeviceInfo(rec InfoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, rec)
	return nil
}

func (s *fakeSink) PublishDeviceStats(rec StatsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = append(s.stats, rec)
	return nil
}

func (s *fakeSink) statsFor(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.stats {
		if rec.DeviceID == id {
			n++
		}
	}
	return n
}

func (s *fakeSink) infosFor(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.infos {
		if rec.DeviceID == id {
			n++
		}
	}
	return n
}

// fakeRecorder records lifecycle events.
type fakeRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *fakeRecorder) Record(deviceID, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, deviceID+":"+event)
}

func (r *fakeRecorder) count(deviceID, event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	want := deviceID + ":" + event
	for _, e := range r.events {
		if e == want {
			n++
		}
	}
	return n
}

// fakeStreams implements StreamDestroyer.
type fakeStreams struct {
	mu        sync.Mutex
	destroyed int
	err       error
}

func (s *fakeStreams) DestroyAllStreams() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed++
	return s.err
}

func (s *fakeStreams) destroyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// registryDevice builds a minimal valid device with a no-op start routine.
func registryDevice(id string) *Device {
	return &Device{ID: id, Start: func(Handle) error { return nil }}
}

// testConfig returns tight loop cadences so scenario tests converge fast.
func testConfig() Config {
	return Config{
		ScanInterval:        10 * time.Millisecond,
		PollInterval:        time.Millisecond,
		ReportInterval:      20 * time.Millisecond,
		StartupPollInterval: 5 * time.Millisecond,
		JoinTimeout:         5 * time.Second,
	}
}

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string, args ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, fmt.Sprintf(msg, args...))
}
