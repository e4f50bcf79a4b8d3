package kartoffels

import (
	"testing"
	"time"
)

func TestMetricsLifecycle(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.BotsBorn != 0 || snap.BotsDied != 0 {
		t.Fatalf("expected zero initial counters, got %+v", snap)
	}

	m.RecordBorn()
	m.RecordBorn()
	m.RecordDied()
	m.RecordScored()
	m.RecordDiscarded()

	snap = m.Snapshot()
	if snap.BotsBorn != 2 {
		t.Errorf("expected 2 births, got %d", snap.BotsBorn)
	}
	if snap.BotsDied != 1 {
		t.Errorf("expected 1 death, got %d", snap.BotsDied)
	}
	if snap.BotsScored != 1 {
		t.Errorf("expected 1 score, got %d", snap.BotsScored)
	}
	if snap.BotsDiscarded != 1 {
		t.Errorf("expected 1 discard, got %d", snap.BotsDiscarded)
	}
}

func TestMetricsTick(t *testing.T) {
	m := NewMetrics()
	m.RecordTick(1000, 2)
	m.RecordTick(500, 0)

	snap := m.Snapshot()
	if snap.TicksRun != 2 {
		t.Errorf("expected 2 ticks, got %d", snap.TicksRun)
	}
	if snap.InstructionsRun != 1500 {
		t.Errorf("expected 1500 instructions, got %d", snap.InstructionsRun)
	}
	if snap.BotCrashes != 2 {
		t.Errorf("expected 2 crashes, got %d", snap.BotCrashes)
	}
}

func TestMetricsCounts(t *testing.T) {
	m := NewMetrics()
	m.RecordCounts(10, 3, 100)

	snap := m.Snapshot()
	if snap.AliveCount != 10 || snap.QueuedCount != 3 || snap.DeadCount != 100 {
		t.Errorf("unexpected counts snapshot: %+v", snap)
	}
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()
	time.Sleep(10 * time.Millisecond)

	snap := m.Snapshot()
	if snap.UptimeNs < 10*uint64(time.Millisecond) {
		t.Errorf("expected uptime >= 10ms, got %d ns", snap.UptimeNs)
	}

	m.Stop()
	time.Sleep(5 * time.Millisecond)
	snap2 := m.Snapshot()
	if snap2.UptimeNs > snap.UptimeNs+uint64(2*time.Millisecond) {
		t.Errorf("uptime increased too much after stop: %d -> %d", snap.UptimeNs, snap2.UptimeNs)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordBorn()
	m.RecordTick(100, 1)

	snap := m.Snapshot()
	if snap.BotsBorn == 0 || snap.TicksRun == 0 {
		t.Fatal("expected counters before reset")
	}

	m.Reset()
	snap = m.Snapshot()
	if snap.BotsBorn != 0 || snap.TicksRun != 0 {
		t.Errorf("expected zero counters after reset, got %+v", snap)
	}
}

func TestNoOpObserverDoesNotPanic(t *testing.T) {
	var o Observer = NoOpObserver{}
	o.ObserveTick(1, 0)
	o.ObserveLifecycle(1, 1, 1, 1)
	o.ObserveEvents(1)
	o.ObserveSnapshot()
	o.ObserveCounts(1, 1, 1)
}

func TestMetricsObserverForwards(t *testing.T) {
	m := NewMetrics()
	obs := NewMetricsObserver(m)

	obs.ObserveTick(42, 1)
	obs.ObserveLifecycle(1, 1, 0, 1)
	obs.ObserveEvents(5)
	obs.ObserveSnapshot()
	obs.ObserveCounts(2, 3, 4)

	snap := m.Snapshot()
	if snap.InstructionsRun != 42 {
		t.Errorf("expected 42 instructions, got %d", snap.InstructionsRun)
	}
	if snap.BotsBorn != 1 || snap.BotsDied != 1 || snap.BotsScored != 1 {
		t.Errorf("unexpected lifecycle counts: %+v", snap)
	}
	if snap.EventsBroadcast != 5 {
		t.Errorf("expected 5 events, got %d", snap.EventsBroadcast)
	}
	if snap.SnapshotsPublished != 1 {
		t.Errorf("expected 1 snapshot, got %d", snap.SnapshotsPublished)
	}
	if snap.AliveCount != 2 || snap.QueuedCount != 3 || snap.DeadCount != 4 {
		t.Errorf("unexpected gauges: %+v", snap)
	}
}
