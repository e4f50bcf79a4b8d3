package kartoffels

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/kartoffels/kartoffels/internal/bots"
	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/engine"
	"github.com/kartoffels/kartoffels/internal/events"
	"github.com/kartoffels/kartoffels/internal/interfaces"
	"github.com/kartoffels/kartoffels/internal/lifecycle"
	"github.com/kartoffels/kartoffels/internal/logging"
	"github.com/kartoffels/kartoffels/internal/objects"
	"github.com/kartoffels/kartoffels/internal/scheduler"
	"github.com/kartoffels/kartoffels/internal/storage"
)

// World is the single-threaded actor that owns every piece of mutable
// engine state: the map, the three bot containers, the object index, the
// RNG stream, and the tick counter. Every field below is read and
// written exclusively from the goroutine running (*World).run — external
// callers only ever reach it through a Handle, which marshals requests
// across a channel the way the spec's "request channel, drained at the
// top of each tick" model describes.
type World struct {
	name  string
	theme string

	mapState *core.Map
	alive    *bots.AliveBots
	queued   *bots.QueuedBots
	dead     *bots.DeadBots
	objects  *objects.Index
	scores   map[core.BotID]uint64

	lifecycleMgr    *lifecycle.Manager
	defaultSpawnPos *core.Pos
	defaultSpawnDir *core.Dir

	rng     *rand.Rand
	rngSeed int64
	tick    uint64

	schedulerOpts scheduler.Options

	broadcaster *events.Broadcaster
	publisher   *events.Publisher

	storage      interfaces.Storage
	clock        interfaces.Clock
	clockKind    string
	saveEvery    uint64
	saving       atomic.Bool
	saveWG       sync.WaitGroup

	observer interfaces.Observer
	logger   *logging.Logger

	requests chan actorRequest
	stop     chan struct{}
	stopped  chan struct{}
}

// WorldParams configures a new world, the same role the teacher's
// DeviceParams plays for a ublk device.
type WorldParams struct {
	Name  string
	Theme string
	Map   *Map
	Seed  int64

	Policy Policy

	// InstructionsPerTick bounds how many instructions each alive bot's
	// CPU may retire per world tick. Zero uses
	// engine.DefaultInstructionsPerTick (1, the canonical rate: one
	// instruction per bot per tick, so every alive bot gets a turn every
	// tick regardless of how many others are alive). Values above
	// engine.MaxInstructionsPerTick are clamped to it, as a ceiling
	// against one bot monopolizing a tick — never treat this field as a
	// per-bot "run to completion" budget.
	InstructionsPerTick uint32

	// Storage persists and restores the world. Nil disables persistence
	// entirely: no load is attempted and no autosave ever runs.
	Storage interfaces.Storage
	// SaveEveryNTicks triggers an autosave every N ticks when Storage is
	// set. Zero disables autosaving (callers may still trigger one by
	// calling Handle.Shutdown, which always flushes a final save).
	SaveEveryNTicks uint64

	// Clock paces the autonomous tick pump. Defaults to NewAutoClock().
	// Pass a *ManualClock to drive ticks only through Handle.Tick.
	Clock interfaces.Clock

	Observer Observer
	Logger   *logging.Logger
}

// DefaultWorldParams returns sane defaults for a freshly created world on
// a blank 64x64 map whose tiles are all void (no bot can spawn until the
// caller supplies floor), matching the teacher's DefaultParams idiom.
func DefaultWorldParams() WorldParams {
	return WorldParams{
		Name:                "world",
		Map:                 NewMap(64, 64),
		Policy:              DefaultPolicy(),
		InstructionsPerTick: engine.DefaultInstructionsPerTick,
	}
}

func newChildRNG(parent *rand.Rand) *rand.Rand {
	return rand.New(rand.NewSource(parent.Int63()))
}

// NewWorld constructs a world from params, restoring from Storage first
// if a save file is present. It does not start the tick loop; call Spawn
// to obtain a running Handle.
func NewWorld(params WorldParams) (*World, error) {
	if params.Map == nil {
		params.Map = NewMap(64, 64)
	}
	if params.InstructionsPerTick == 0 {
		params.InstructionsPerTick = engine.DefaultInstructionsPerTick
	}
	if params.InstructionsPerTick > engine.MaxInstructionsPerTick {
		params.InstructionsPerTick = engine.MaxInstructionsPerTick
	}
	if params.Policy == (Policy{}) {
		params.Policy = DefaultPolicy()
	}
	seed := params.Seed
	if seed == 0 {
		seed = 1
	}

	clock := params.Clock
	clockKind := "auto"
	if clock == nil {
		clock = NewAutoClock()
	} else if _, ok := clock.(*ManualClock); ok {
		clockKind = "manual"
	}

	var observer interfaces.Observer = NoOpObserver{}
	if params.Observer != nil {
		observer = params.Observer
	}
	logger := params.Logger
	if logger == nil {
		logger = logging.Default()
	}

	w := &World{
		name:            params.Name,
		theme:           params.Theme,
		mapState:        params.Map,
		alive:           bots.NewAliveBots(),
		queued:          bots.NewQueuedBots(),
		dead:            bots.NewDeadBots(engine.DeadBotsCapacity),
		objects:         objects.NewIndex(),
		scores:          make(map[core.BotID]uint64),
		lifecycleMgr:    lifecycle.NewManager(params.Policy),
		rng:             rand.New(rand.NewSource(seed)),
		rngSeed:         seed,
		schedulerOpts:   scheduler.Options{InstructionsPerTick: params.InstructionsPerTick},
		broadcaster:     events.NewBroadcaster(),
		publisher:       events.NewPublisher(),
		storage:         params.Storage,
		clock:           clock,
		clockKind:       clockKind,
		saveEvery:       params.SaveEveryNTicks,
		observer:        observer,
		logger:          logger,
		requests:        make(chan actorRequest, 32),
		stop:            make(chan struct{}),
		stopped:         make(chan struct{}),
	}

	if w.storage != nil {
		if err := w.loadFromStorage(); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Spawn creates a world from params and starts its actor goroutine,
// returning a Handle external callers use to interact with it —
// mirroring the teacher's CreateAndServe(ctx, params, options) entry
// point, minus the ctx (shutdown here is explicit via Handle.Shutdown).
func Spawn(params WorldParams) (*Handle, error) {
	w, err := NewWorld(params)
	if err != nil {
		return nil, err
	}
	go w.run()
	return &Handle{requests: w.requests, stopped: w.stopped}, nil
}

// run is the actor's only goroutine body. It drains the request channel,
// and — for an Auto clock — is fed one synthetic tick request per
// metronome period by a small pump goroutine started below, so that a
// clock pulse is just another request flowing through the same channel
// as CreateBot/DeleteBot/etc. This keeps every mutation of world state on
// exactly one goroutine without introducing a second request path.
func (w *World) run() {
	pumpStop := make(chan struct{})
	if w.clockKind == "auto" {
		go w.pumpAutoTicks(pumpStop)
	}

	for req := range w.requests {
		resp := actorResponse{}
		resp.value, resp.err = req.apply(w)
		req.response <- resp
		if req.shutdown {
			break
		}
	}

	close(w.stop)
	close(pumpStop)
	w.finalize()
	close(w.stopped)
}

func (w *World) pumpAutoTicks(stop <-chan struct{}) {
	for {
		if !w.clock.Wait(w.stop) {
			return
		}
		select {
		case w.requests <- autoTickRequest():
		case <-stop:
			return
		case <-w.stop:
			return
		}
	}
}

func autoTickRequest() actorRequest {
	return actorRequest{
		apply: func(w *World) (interface{}, error) {
			w.tickOnce()
			return nil, nil
		},
		response: make(chan actorResponse, 1),
	}
}

func (w *World) finalize() {
	if w.storage != nil {
		w.saveWG.Wait() // let any in-flight autosave land first
		w.saveNow()
		w.saveWG.Wait() // then wait for the final save before closing
		w.storage.Close()
	}
	if ac, ok := w.clock.(*AutoClock); ok {
		ac.Stop()
	}
}

// tickOnce runs exactly one world tick: scheduler step, lifecycle kills,
// spawn-queue draining, event broadcast, snapshot publication, and an
// autosave if one is due. It must only ever be invoked on the actor
// goroutine.
func (w *World) tickOnce() {
	w.tick++

	result := scheduler.Step(w.tick, w.alive, w.objects, w.mapState, w.rng, w.schedulerOpts)

	batch := make([]events.Event, 0, len(result.Events)+len(result.Kills)+1)
	batch = append(batch, result.Events...)

	// BotScored only ever originates from lifecycle.Manager.Kill below: it
	// is the one place that knows a stab actually landed on a bot that
	// hadn't already been killed earlier this same tick.
	var died, scored, discarded uint64

	for _, k := range result.Kills {
		evs, err := w.lifecycleMgr.Kill(w.alive, w.queued, w.dead, k.ID, k.Reason, k.Killer, w.tick)
		if err != nil {
			// The bot is no longer alive. The scheduler's killed set
			// already keeps a bot from being reported twice in one tick,
			// so this is a defensive skip — nothing further to do.
			continue
		}
		batch = append(batch, evs...)
		for _, e := range evs {
			switch e.Kind {
			case events.BotDied:
				died++
			case events.BotScored:
				w.scores[e.BotID]++
				scored++
			case events.BotDiscarded:
				discarded++
			}
		}
	}

	born := w.lifecycleMgr.SpawnTick(w.alive, w.queued, w.mapState, w.rng, w.defaultSpawnPos, w.defaultSpawnDir, w.tick)
	batch = append(batch, born...)

	for i := range batch {
		batch[i].Version = w.tick
	}

	if len(batch) > 0 {
		w.broadcaster.Publish(batch)
	}
	w.publishSnapshot()

	w.observer.ObserveTick(result.InstructionsRun, result.Crashes)
	w.observer.ObserveLifecycle(uint64(len(born)), died, discarded, scored)
	w.observer.ObserveEvents(uint64(len(batch)))
	w.observer.ObserveSnapshot()
	w.observer.ObserveCounts(uint32(w.alive.Len()), uint32(w.queued.Len()), uint32(w.dead.Len()))

	if w.storage != nil && w.saveEvery > 0 && w.tick%w.saveEvery == 0 {
		w.saveNow()
	}
}

func (w *World) publishSnapshot() {
	aliveViews := make([]events.BotView, 0, w.alive.Len())
	for _, id := range w.alive.IDs() {
		b, _ := w.alive.Get(id)
		aliveViews = append(aliveViews, events.BotView{ID: id, Pos: b.Pos, Dir: b.Dir, Life: w.tick - b.Birth})
	}

	queuedBots := w.queued.All()
	queuedViews := make([]events.QueuedBotView, 0, len(queuedBots))
	for _, qb := range queuedBots {
		queuedViews = append(queuedViews, events.QueuedBotView{ID: qb.ID, Requeued: qb.Requeued})
	}

	deadBots := w.dead.All()
	deadViews := make([]events.DeadBotView, 0, len(deadBots))
	for _, db := range deadBots {
		deadViews = append(deadViews, events.DeadBotView{ID: db.ID})
	}

	w.publisher.Publish(&events.Snapshot{
		Version:   w.tick,
		ClockKind: w.clockKind,
		Map:       w.mapState.Clone(),
		Alive:     aliveViews,
		Queued:    queuedViews,
		Dead:      deadViews,
		Objects:   w.objects.All(),
	})
}

// saveNow captures a consistent DOM synchronously (on the actor
// goroutine) and hands it to a background goroutine for encoding and
// disk I/O, per spec §5: the save task "holds no mutable reference to
// live engine state". A save overlapping one already in flight would
// mean this guard itself has a bug — that is the "fatal" case spec §4.6
// calls out, so it panics rather than logging and continuing.
func (w *World) saveNow() {
	if !w.saving.CompareAndSwap(false, true) {
		Fatalf("World.saveNow", "autosave fired while a previous save was still in flight")
	}

	dom := w.buildSaveDOM()
	logger := w.logger
	st := w.storage
	w.saveWG.Add(1)
	go func() {
		defer w.saveWG.Done()
		defer w.saving.Store(false)
		data, err := storage.Encode(dom)
		if err != nil {
			logger.Errorf("save: encoding failed: %v", err)
			return
		}
		if err := st.Save(data); err != nil {
			logger.Errorf("save: write failed: %v", err)
		}
	}()
}
