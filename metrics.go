package kartoffels

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks performance and operational statistics for a world.
// All fields are safe for concurrent access; the tick loop updates them
// once per tick from the single world goroutine, while Snapshot() may be
// called concurrently by an exporter.
type Metrics struct {
	// Lifecycle counters
	BotsBorn      atomic.Uint64
	BotsDied      atomic.Uint64
	BotsDiscarded atomic.Uint64
	BotsScored    atomic.Uint64

	// Per-tick counters
	TicksRun           atomic.Uint64
	InstructionsRun    atomic.Uint64
	BotCrashes         atomic.Uint64
	EventsBroadcast    atomic.Uint64
	SnapshotsPublished atomic.Uint64

	// Gauges, sampled once per tick
	AliveCount  atomic.Uint32
	QueuedCount atomic.Uint32
	DeadCount   atomic.Uint32

	// Lifecycle
	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordBorn records a bot transitioning queued -> alive.
func (m *Metrics) RecordBorn() { m.BotsBorn.Add(1) }

// RecordDied records a bot death (crash, fall, stab, or administrative kill).
func (m *Metrics) RecordDied() { m.BotsDied.Add(1) }

// RecordDiscarded records a dead bot evicted from the LRU.
func (m *Metrics) RecordDiscarded() { m.BotsDiscarded.Add(1) }

// RecordScored records a kill credited to another bot.
func (m *Metrics) RecordScored() { m.BotsScored.Add(1) }

// RecordTick records one world tick's worth of scheduler work.
func (m *Metrics) RecordTick(instructions uint64, crashes uint64) {
	m.TicksRun.Add(1)
	m.InstructionsRun.Add(instructions)
	m.BotCrashes.Add(crashes)
}

// RecordEvents records a batch of events flushed to the broadcast channel.
func (m *Metrics) RecordEvents(n uint64) { m.EventsBroadcast.Add(n) }

// RecordSnapshot records a snapshot publication.
func (m *Metrics) RecordSnapshot() { m.SnapshotsPublished.Add(1) }

// RecordCounts samples the current container sizes.
func (m *Metrics) RecordCounts(alive, queued, dead uint32) {
	m.AliveCount.Store(alive)
	m.QueuedCount.Store(queued)
	m.DeadCount.Store(dead)
}

// Stop marks the world as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time, plain-value copy of Metrics.
type MetricsSnapshot struct {
	BotsBorn, BotsDied, BotsDiscarded, BotsScored uint64
	TicksRun, InstructionsRun, BotCrashes         uint64
	EventsBroadcast, SnapshotsPublished           uint64
	AliveCount, QueuedCount, DeadCount            uint32
	UptimeNs                                      uint64
	InstructionsPerSecond                         float64
}

// Snapshot returns a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		BotsBorn:           m.BotsBorn.Load(),
		BotsDied:           m.BotsDied.Load(),
		BotsDiscarded:      m.BotsDiscarded.Load(),
		BotsScored:         m.BotsScored.Load(),
		TicksRun:           m.TicksRun.Load(),
		InstructionsRun:    m.InstructionsRun.Load(),
		BotCrashes:         m.BotCrashes.Load(),
		EventsBroadcast:    m.EventsBroadcast.Load(),
		SnapshotsPublished: m.SnapshotsPublished.Load(),
		AliveCount:         m.AliveCount.Load(),
		QueuedCount:        m.QueuedCount.Load(),
		DeadCount:          m.DeadCount.Load(),
	}

	start := m.StartTime.Load()
	stop := m.StopTime.Load()
	if stop > 0 {
		snap.UptimeNs = uint64(stop - start)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - start)
	}
	if snap.UptimeNs > 0 {
		snap.InstructionsPerSecond = float64(snap.InstructionsRun) / (float64(snap.UptimeNs) / 1e9)
	}
	return snap
}

// Reset zeroes every counter — useful for testing.
func (m *Metrics) Reset() {
	m.BotsBorn.Store(0)
	m.BotsDied.Store(0)
	m.BotsDiscarded.Store(0)
	m.BotsScored.Store(0)
	m.TicksRun.Store(0)
	m.InstructionsRun.Store(0)
	m.BotCrashes.Store(0)
	m.EventsBroadcast.Store(0)
	m.SnapshotsPublished.Store(0)
	m.AliveCount.Store(0)
	m.QueuedCount.Store(0)
	m.DeadCount.Store(0)
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection from the tick loop.
// Implementations must be safe to call from the single world goroutine;
// no concurrent calls are made, but implementations may themselves be
// read concurrently (e.g. by a Prometheus scrape).
type Observer interface {
	ObserveTick(instructions uint64, crashes uint64)
	ObserveLifecycle(born, died, discarded, scored uint64)
	ObserveEvents(n uint64)
	ObserveSnapshot()
	ObserveCounts(alive, queued, dead uint32)
}

// NoOpObserver discards every observation.
type NoOpObserver struct{}

func (NoOpObserver) ObserveTick(uint64, uint64)          {}
func (NoOpObserver) ObserveLifecycle(_, _, _, _ uint64)  {}
func (NoOpObserver) ObserveEvents(uint64)                {}
func (NoOpObserver) ObserveSnapshot()                    {}
func (NoOpObserver) ObserveCounts(_, _, _ uint32)        {}

// MetricsObserver implements Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveTick(instructions, crashes uint64) {
	o.metrics.RecordTick(instructions, crashes)
}

func (o *MetricsObserver) ObserveLifecycle(born, died, discarded, scored uint64) {
	for i := uint64(0); i < born; i++ {
		o.metrics.RecordBorn()
	}
	for i := uint64(0); i < died; i++ {
		o.metrics.RecordDied()
	}
	for i := uint64(0); i < discarded; i++ {
		o.metrics.RecordDiscarded()
	}
	for i := uint64(0); i < scored; i++ {
		o.metrics.RecordScored()
	}
}

func (o *MetricsObserver) ObserveEvents(n uint64) { o.metrics.RecordEvents(n) }
func (o *MetricsObserver) ObserveSnapshot()       { o.metrics.RecordSnapshot() }
func (o *MetricsObserver) ObserveCounts(alive, queued, dead uint32) {
	o.metrics.RecordCounts(alive, queued, dead)
}

// PrometheusObserver implements Observer and registers its counters/gauges
// with a prometheus.Registerer, so a world's tick-loop activity can be
// scraped the way the pack's aistore/chaos-utils services export runtime
// counters.
type PrometheusObserver struct {
	instructions prometheus.Counter
	crashes      prometheus.Counter
	born         prometheus.Counter
	died         prometheus.Counter
	discarded    prometheus.Counter
	scored       prometheus.Counter
	events       prometheus.Counter
	snapshots    prometheus.Counter
	alive        prometheus.Gauge
	queued       prometheus.Gauge
	dead         prometheus.Gauge
}

// NewPrometheusObserver creates and registers a PrometheusObserver.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		instructions: prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_instructions_total", Help: "Total CPU instructions executed across all bots."}),
		crashes:      prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_bot_crashes_total", Help: "Total bot firmware crashes."}),
		born:         prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_bots_born_total", Help: "Total bots that transitioned queued->alive."}),
		died:         prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_bots_died_total", Help: "Total bot deaths."}),
		discarded:    prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_bots_discarded_total", Help: "Total dead bots evicted from the LRU."}),
		scored:       prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_bots_scored_total", Help: "Total kills credited to a bot."}),
		events:       prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_events_total", Help: "Total events broadcast."}),
		snapshots:    prometheus.NewCounter(prometheus.CounterOpts{Name: "kartoffels_snapshots_total", Help: "Total snapshots published."}),
		alive:        prometheus.NewGauge(prometheus.GaugeOpts{Name: "kartoffels_bots_alive", Help: "Current alive bot count."}),
		queued:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "kartoffels_bots_queued", Help: "Current queued bot count."}),
		dead:         prometheus.NewGauge(prometheus.GaugeOpts{Name: "kartoffels_bots_dead", Help: "Current dead bot count."}),
	}
	reg.MustRegister(o.instructions, o.crashes, o.born, o.died, o.discarded, o.scored, o.events, o.snapshots, o.alive, o.queued, o.dead)
	return o
}

func (o *PrometheusObserver) ObserveTick(instructions, crashes uint64) {
	o.instructions.Add(float64(instructions))
	o.crashes.Add(float64(crashes))
}

func (o *PrometheusObserver) ObserveLifecycle(born, died, discarded, scored uint64) {
	o.born.Add(float64(born))
	o.died.Add(float64(died))
	o.discarded.Add(float64(discarded))
	o.scored.Add(float64(scored))
}

func (o *PrometheusObserver) ObserveEvents(n uint64) { o.events.Add(float64(n)) }
func (o *PrometheusObserver) ObserveSnapshot()       { o.snapshots.Add(1) }
func (o *PrometheusObserver) ObserveCounts(alive, queued, dead uint32) {
	o.alive.Set(float64(alive))
	o.queued.Set(float64(queued))
	o.dead.Set(float64(dead))
}

var (
	_ Observer = (*MetricsObserver)(nil)
	_ Observer = (*NoOpObserver)(nil)
	_ Observer = (*PrometheusObserver)(nil)
)
