package fleet

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestSupervisor(factory *fakeFactory) *supervisor {
	return &supervisor{
		registry:     NewRegistry(),
		pool:         newPool(),
		factory:      factory.new,
		events:       &fakeRecorder{},
		logger:       noopLogger{},
		scanInterval: 10 * time.Millisecond,
	}
}

func TestSupervisor_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("connects registered devices", func(t *testing.T) {
		factory := newFakeFactory()
		s := newTestSupervisor(factory)

		var connects int
		dev := &Device{
			ID:        "cam-1",
			Start:     func(Handle) error { return nil },
			OnConnect: func(Handle) { connects++ },
		}
		if err := s.registry.Add(dev); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		s.reconcile(ctx)

		if s.pool.len() != 1 {
			t.Fatalf("pool len = %d, want 1", s.pool.len())
		}
		if connects != 1 {
			t.Errorf("connect callback invoked %d times, want 1", connects)
		}
		if got := factory.latest("cam-1").starts; got != 1 {
			t.Errorf("handle started %d times, want 1", got)
		}
	})

	t.Run("skips scan when an attempt is in flight", func(t *testing.T) {
		factory := newFakeFactory()
		s := newTestSupervisor(factory)
		if err := s.registry.Add(registryDevice("cam-1")); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		s.connecting.Store(true)
		s.reconcile(ctx)

		if s.pool.len() != 0 {
			t.Errorf("pool len = %d, want 0 while another attempt is in flight", s.pool.len())
		}

		s.connecting.Store(false)
		s.reconcile(ctx)
		if s.pool.len() != 1 {
			t.Errorf("pool len = %d, want 1 after flag cleared", s.pool.len())
		}
	})

	t.Run("failed start routine stops the nascent handle", func(t *testing.T) {
		factory := newFakeFactory()
		s := newTestSupervisor(factory)

		var connects int
		dev := &Device{
			ID:        "cam-bad",
			Start:     func(Handle) error { return errors.New("pipeline build failed") },
			OnConnect: func(Handle) { connects++ },
		}
		if err := s.registry.Add(dev); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		s.reconcile(ctx)

		if s.pool.len() != 0 {
			t.Errorf("pool len = %d, want 0", s.pool.len())
		}
		if connects != 0 {
			t.Errorf("connect callback invoked %d times, want 0", connects)
		}
		h := factory.latest("cam-bad")
		if h.stopCount() != 1 {
			t.Errorf("nascent handle stopped %d times, want 1", h.stopCount())
		}
		if h.starts != 0 {
			t.Errorf("handle runtime started %d times, want 0", h.starts)
		}
	})

	t.Run("discards a handle that lost the insert race", func(t *testing.T) {
		factory := newFakeFactory()
		s := newTestSupervisor(factory)

		// The device's start routine sneaks a competing handle into the
		// pool, simulating a second supervisor winning the race.
		rival := newFakeHandle("cam-1")
		dev := &Device{
			ID: "cam-1",
			Start: func(Handle) error {
				return s.pool.add(rival)
			},
		}
		if err := s.registry.Add(dev); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		s.reconcile(ctx)

		if s.pool.len() != 1 {
			t.Fatalf("pool len = %d, want 1", s.pool.len())
		}
		got, _ := s.pool.get("cam-1")
		if got != Handle(rival) {
			t.Error("pool entry is not the winning handle")
		}
		if loser := factory.latest("cam-1"); loser.stopCount() != 1 {
			t.Errorf("losing handle stopped %d times, want 1", loser.stopCount())
		}
	})

	t.Run("no-op when pool matches registry", func(t *testing.T) {
		factory := newFakeFactory()
		s := newTestSupervisor(factory)
		if err := s.registry.Add(registryDevice("cam-1")); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		s.reconcile(ctx)
		s.reconcile(ctx)

		if got := factory.count("cam-1"); got != 1 {
			t.Errorf("factory invoked %d times, want 1", got)
		}
	})
}

func TestSupervisor_RecordsConnectEvents(t *testing.T) {
	factory := newFakeFactory()
	s := newTestSupervisor(factory)
	recorder := &fakeRecorder{}
	s.events = recorder

	if err := s.registry.Add(registryDevice("cam-1")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	s.reconcile(context.Background())

	if got := recorder.count("cam-1", EventConnected); got != 1 {
		t.Errorf("connected events = %d, want 1", got)
	}
}
