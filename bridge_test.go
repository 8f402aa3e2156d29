package strata

import (
	"context"
	"errors"
	"testing"
	"time"
)

type bridgeConfig struct {
	Level int `json:"level" yaml:"level" validate:"min=1,max=10"`
}

// waitForInbound blocks until the watcher goroutine has captured a value,
// so the next tick is guaranteed to see it.
func waitForInbound[S comparable](t *testing.T, b *Bridge[S]) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if b.latest.Load() != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for watched value")
}

func TestBridge_InboundStagesAndFlushes(t *testing.T) {
	e := NewEngine()
	cfg, _ := Add[bridgeConfig](e, "config")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := make(chan []byte, 1)
	b := NewBridge(cfg, NewSyncChannelWatcher(src), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	src <- []byte(`{"level":3}`)
	waitForInbound(t, b)

	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	v, ok := cfg.Current()
	if !ok || v.Level != 3 {
		t.Errorf("expected level 3 committed, got %+v (ok=%v)", v, ok)
	}
	if b.LastError() != nil {
		t.Errorf("unexpected bridge error: %v", b.LastError())
	}
}

func TestBridge_RejectsInvalidValue(t *testing.T) {
	e := NewEngine()
	cfg, _ := Add[bridgeConfig](e, "config")
	cfg.Initial(bridgeConfig{Level: 2})
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := make(chan []byte, 1)
	b := NewBridge(cfg, NewSyncChannelWatcher(src), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := e.Tick(ctx); err != nil { // commit initial
		t.Fatalf("Tick failed: %v", err)
	}

	src <- []byte(`{"level":99}`)
	waitForInbound(t, b)

	// The rejection is recorded; the tick itself stays healthy and the
	// previous value survives.
	if err := e.Tick(ctx); err != nil {
		t.Fatalf("expected healthy tick despite rejection, got %v", err)
	}
	if v, _ := cfg.Current(); v.Level != 2 {
		t.Errorf("expected previous value retained, got %+v", v)
	}
	if b.LastError() == nil {
		t.Error("expected LastError after validation rejection")
	}
}

func TestBridge_RejectsMalformedData(t *testing.T) {
	e := NewEngine()
	cfg, _ := Add[bridgeConfig](e, "config")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := make(chan []byte, 1)
	b := NewBridge(cfg, NewSyncChannelWatcher(src), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	src <- []byte(`{not json`)
	waitForInbound(t, b)

	if err := e.Tick(ctx); err != nil {
		t.Fatalf("expected healthy tick despite rejection, got %v", err)
	}
	if cfg.IsEnabled() {
		t.Error("expected no value committed from malformed data")
	}
	if b.LastError() == nil {
		t.Error("expected LastError after decode failure")
	}
}

func TestBridge_SkipValidation(t *testing.T) {
	e := NewEngine()
	cfg, _ := Add[bridgeConfig](e, "config")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := make(chan []byte, 1)
	b := NewBridge(cfg, NewSyncChannelWatcher(src), nil).SkipValidation()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	src <- []byte(`{"level":99}`)
	waitForInbound(t, b)

	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if v, _ := cfg.Current(); v.Level != 99 {
		t.Errorf("expected out-of-range value accepted, got %+v", v)
	}
}

func TestBridge_YAMLCodec(t *testing.T) {
	e := NewEngine()
	cfg, _ := Add[bridgeConfig](e, "config")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := make(chan []byte, 1)
	b := NewBridge(cfg, NewSyncChannelWatcher(src), nil).Codec(YAMLCodec{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	src <- []byte("level: 4\n")
	waitForInbound(t, b)

	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if v, _ := cfg.Current(); v.Level != 4 {
		t.Errorf("expected level 4, got %+v", v)
	}
}

func TestBridge_OutboundPublishesEngineFlushes(t *testing.T) {
	e := NewEngine()
	mode, _ := Add[int](e, "mode")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var published [][]byte
	sink := func(_ context.Context, data []byte) error {
		published = append(published, data)
		return nil
	}

	src := make(chan []byte, 1)
	b := NewBridge(mode, NewSyncChannelWatcher(src), sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mode.Set(5)
	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	if len(published) != 1 || string(published[0]) != "5" {
		t.Fatalf("expected published [5], got %q", published)
	}

	// An inbound flush is not echoed back to the sink.
	src <- []byte("7")
	waitForInbound(t, b)
	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if v, _ := mode.Current(); v != 7 {
		t.Errorf("expected inbound 7 committed, got %v", v)
	}
	if len(published) != 1 {
		t.Errorf("expected no echo of inbound flush, got %q", published)
	}
}

func TestBridge_InboundWinsOverStagedWrite(t *testing.T) {
	e := NewEngine()
	mode, _ := Add[int](e, "mode")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := make(chan []byte, 1)
	b := NewBridge(mode, NewSyncChannelWatcher(src), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mode.Set(1)
	src <- []byte("2")
	waitForInbound(t, b)

	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if v, _ := mode.Current(); v != 2 {
		t.Errorf("expected inbound value to win, got %v", v)
	}
}

func TestBridge_SinkFailureRecorded(t *testing.T) {
	e := NewEngine()
	mode, _ := Add[int](e, "mode")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	sinkErr := errors.New("disk full")
	src := make(chan []byte)
	b := NewBridge(mode, NewSyncChannelWatcher(src), func(_ context.Context, _ []byte) error {
		return sinkErr
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mode.Set(5)
	if err := e.Tick(ctx); err != nil {
		t.Fatalf("expected healthy tick despite sink failure, got %v", err)
	}
	if v, _ := mode.Current(); v != 5 {
		t.Errorf("expected flush committed regardless of sink, got %v", v)
	}
	if !errors.Is(b.LastError(), sinkErr) {
		t.Errorf("expected sink failure recorded, got %v", b.LastError())
	}
}

func TestBridge_StartTwice(t *testing.T) {
	e := NewEngine()
	mode, _ := Add[int](e, "mode")
	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	src := make(chan []byte)
	b := NewBridge(mode, NewSyncChannelWatcher(src), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := b.Start(ctx); err == nil {
		t.Error("expected error on second Start")
	}
}
