package core

import (
	"io"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClock()
	c.now = func() time.Time { return now }

	c.Update()
	if c.Elapsed() != 0 {
		t.Errorf("Elapsed() before Start = %v, want 0", c.Elapsed())
	}

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	if c.Elapsed() != 1.5 {
		t.Errorf("Elapsed() = %v, want 1.5", c.Elapsed())
	}

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	if c.Elapsed() != 1.5 {
		t.Errorf("Elapsed() after Stop = %v, want 1.5", c.Elapsed())
	}

	c.Start()
	if c.Elapsed() != 0 {
		t.Errorf("Elapsed() after restart = %v, want 0", c.Elapsed())
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	if got := m.FrameTime(); got < 15.99 || got > 16.01 {
		t.Errorf("FrameTime() = %v, want 16", got)
	}
	// 30 frames of 16ms is under a second, no fps sample yet
	if m.FPS() != 0 {
		t.Errorf("FPS() = %v, want 0", m.FPS())
	}
	for i := 0; i < 40; i++ {
		m.Update(0.016)
	}
	fps, ms := m.Frame()
	if fps != 62 {
		t.Errorf("FPS() = %v, want 62", fps)
	}
	if ms != m.FrameTime() {
		t.Errorf("Frame() ms = %v, want %v", ms, m.FrameTime())
	}
}

func TestIdentifierPool(t *testing.T) {
	p := NewIdentifierPool(4)
	a := p.Acquire("a")
	b := p.Acquire(nil)
	if a != 0 || b != 1 {
		t.Fatalf("Acquire() = %d, %d, want 0, 1", a, b)
	}
	if p.Owner(a) != "a" {
		t.Errorf("Owner(%d) = %v, want a", a, p.Owner(a))
	}
	if p.Owner(b) == nil {
		t.Error("nil owner should still hold its slot")
	}
	if err := p.Release(a); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := p.Release(a); err == nil {
		t.Error("double Release() should fail")
	}
	if err := p.Release(42); err == nil {
		t.Error("Release() out of range should fail")
	}
	if got := p.Acquire("c"); got != a {
		t.Errorf("Acquire() = %d, want recycled %d", got, a)
	}
	if p.InUse() != 2 {
		t.Errorf("InUse() = %d, want 2", p.InUse())
	}
	if p.Owner(99) != nil {
		t.Error("Owner() out of range should be nil")
	}
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	var got []string
	first, second := "first", "second"
	handler := func(handled bool) FnOnEvent {
		return func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
			got = append(got, listener.(string))
			return handled
		}
	}

	if !bus.Register(EVENT_CODE_RESIZED, first, handler(false)) {
		t.Fatal("Register() = false")
	}
	if bus.Register(EVENT_CODE_RESIZED, first, handler(false)) {
		t.Error("duplicate Register() should fail")
	}
	if bus.Register(MAX_MESSAGE_CODES, first, handler(false)) {
		t.Error("Register() with out of range code should fail")
	}
	bus.Register(EVENT_CODE_RESIZED, second, handler(true))

	var ctx EventContext
	ctx.Data.U32[0], ctx.Data.U32[1] = 800, 600
	if !bus.Fire(EVENT_CODE_RESIZED, nil, ctx) {
		t.Error("Fire() = false, want handled")
	}
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("listeners called = %v", got)
	}

	if !bus.Unregister(EVENT_CODE_RESIZED, second) {
		t.Error("Unregister() = false")
	}
	if bus.Unregister(EVENT_CODE_RESIZED, second) {
		t.Error("second Unregister() should fail")
	}
	if bus.Fire(EVENT_CODE_RESIZED, nil, ctx) {
		t.Error("Fire() = true with only an unhandled listener")
	}

	bus.Shutdown()
	got = nil
	bus.Fire(EVENT_CODE_RESIZED, nil, ctx)
	if len(got) != 0 {
		t.Errorf("listeners called after Shutdown: %v", got)
	}
}
