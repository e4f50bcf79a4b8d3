package kartoffels

import (
	"errors"
	"strings"

	"github.com/kartoffels/kartoffels/internal/core"
	"github.com/kartoffels/kartoffels/internal/events"
	"github.com/kartoffels/kartoffels/internal/lifecycle"
)

// actorRequest is one unit of work crossing from a Handle into the
// world's single actor goroutine. apply runs entirely on that goroutine;
// everything it touches on *World is therefore free of data races by
// construction, the same guarantee the spec's "request channel drained
// at the top of each tick" model describes.
type actorRequest struct {
	apply    func(w *World) (interface{}, error)
	response chan actorResponse
	shutdown bool
}

type actorResponse struct {
	value interface{}
	err   error
}

// Handle is the external request/response surface a world exposes once
// spawned — create/delete/restart a bot, reconfigure the map/spawn/
// policy, subscribe to events and snapshots, drive manual ticks, and
// shut down. It is safe to share a Handle across goroutines: every call
// just enqueues a request and waits for its response.
type Handle struct {
	requests chan actorRequest
	stopped  <-chan struct{}
}

func (h *Handle) do(apply func(w *World) (interface{}, error)) (interface{}, error) {
	req := actorRequest{apply: apply, response: make(chan actorResponse, 1)}
	select {
	case h.requests <- req:
	case <-h.stopped:
		return nil, NewError("Handle", ErrWorldShutdown, "world is no longer running")
	}
	select {
	case resp := <-req.response:
		return resp.value, resp.err
	case <-h.stopped:
		return nil, NewError("Handle", ErrWorldShutdown, "world is no longer running")
	}
}

// CreateBotRequest describes a firmware upload.
type CreateBotRequest struct {
	Firmware     []byte
	RequestedPos *Pos
	RequestedDir *Dir
	Instant      bool
	Oneshot      bool
}

// CreateBot uploads firmware, assigning it a fresh BotID. If Instant is
// set and a slot is immediately free it spawns this tick; otherwise it
// joins the back of the spawn queue.
func (h *Handle) CreateBot(req CreateBotRequest) (BotID, error) {
	val, err := h.do(func(w *World) (interface{}, error) {
		id, err := w.lifecycleMgr.Create(w.alive, w.queued, w.dead, w.mapState, w.rng, lifecycle.CreateRequest{
			Firmware:     req.Firmware,
			RequestedPos: req.RequestedPos,
			RequestedDir: req.RequestedDir,
			Instant:      req.Instant,
			Oneshot:      req.Oneshot,
		}, w.tick)
		if err != nil {
			return BotID(0), classifyCreateError(err)
		}
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	return val.(BotID), nil
}

// DeleteBot removes a bot from the alive or the queued container. Dead-bot
// records are not removed: for a bot found only among the dead, DeleteBot
// returns ErrBotNotFound.
func (h *Handle) DeleteBot(id BotID) error {
	_, err := h.do(func(w *World) (interface{}, error) {
		if !lifecycle.Delete(w.alive, w.queued, w.dead, id) {
			return nil, NewBotError("DeleteBot", id, ErrBotNotFound, "bot not found among queued or alive")
		}
		return nil, nil
	})
	return err
}

// RestartBot kills an alive bot and, if auto-respawn applies, requeues
// it, matching the "kill+requeue" shorthand in the Handle contract.
func (h *Handle) RestartBot(id BotID) error {
	_, err := h.do(func(w *World) (interface{}, error) {
		evs, err := w.lifecycleMgr.Kill(w.alive, w.queued, w.dead, id, "restarted", 0, w.tick)
		if err != nil {
			return nil, classifyLifecycleError("RestartBot", id, err)
		}
		for i := range evs {
			evs[i].Version = w.tick
		}
		w.broadcaster.Publish(evs)
		return nil, nil
	})
	return err
}

// SetMap replaces the world's map. Bots keep their current positions
// even if they no longer sit on floor tiles; the next tick's actions
// (or lack of a legal move) surface any resulting inconsistency the way
// a live map edit naturally would.
func (h *Handle) SetMap(m *Map) error {
	_, err := h.do(func(w *World) (interface{}, error) {
		w.mapState = m
		return nil, nil
	})
	return err
}

// SetSpawn configures the world's default spawn point. Passing nil pos
// clears it, falling back to reject-sampling a random legal tile.
func (h *Handle) SetSpawn(pos *Pos, dir *Dir) error {
	_, err := h.do(func(w *World) (interface{}, error) {
		w.defaultSpawnPos = pos
		w.defaultSpawnDir = dir
		return nil, nil
	})
	return err
}

// SetPolicy replaces the world's admission policy, effective starting
// the next spawn/kill decision.
func (h *Handle) SetPolicy(p Policy) error {
	_, err := h.do(func(w *World) (interface{}, error) {
		w.lifecycleMgr.Policy = p
		return nil, nil
	})
	return err
}

// Subscription bundles an event stream with the world's snapshot
// publisher — callers read events.Subscription.C() for the former and
// poll publisher.Latest() for the latter, matching spec §4.5's "events
// are a stream, snapshots are a polled latest-value".
type Subscription struct {
	Events    *events.Subscription
	Snapshots func() *events.Snapshot
}

// Subscribe registers a new subscriber and returns its event stream plus
// a function returning the latest published snapshot.
func (h *Handle) Subscribe() (*Subscription, error) {
	val, err := h.do(func(w *World) (interface{}, error) {
		sub := w.broadcaster.Subscribe()
		return &Subscription{Events: sub, Snapshots: w.publisher.Latest}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Subscription), nil
}

// Unsubscribe releases a subscription obtained from Subscribe.
func (h *Handle) Unsubscribe(sub *Subscription) error {
	_, err := h.do(func(w *World) (interface{}, error) {
		w.broadcaster.Unsubscribe(sub.Events)
		return nil, nil
	})
	return err
}

// Tick advances the world by n ticks immediately. Valid only when the
// world was spawned with a ManualClock; otherwise ticks are already
// paced autonomously by the metronome and Tick returns an error.
func (h *Handle) Tick(n int) error {
	_, err := h.do(func(w *World) (interface{}, error) {
		if w.clockKind != "manual" {
			return nil, NewError("Tick", ErrNotManualClock, "world is not running a manual clock")
		}
		for i := 0; i < n; i++ {
			w.tickOnce()
		}
		return nil, nil
	})
	return err
}

// Shutdown finishes the in-flight request, flushes a final save if
// persistence is configured, broadcasts a final snapshot (already
// published by the last tick), and stops the actor goroutine. It is
// safe to call more than once; subsequent calls see ErrWorldShutdown.
func (h *Handle) Shutdown() error {
	req := actorRequest{
		apply:    func(w *World) (interface{}, error) { return nil, nil },
		response: make(chan actorResponse, 1),
		shutdown: true,
	}
	select {
	case <-h.stopped:
		return NewError("Shutdown", ErrWorldShutdown, "world is already shut down")
	default:
	}
	select {
	case h.requests <- req:
	case <-h.stopped:
		return NewError("Shutdown", ErrWorldShutdown, "world is already shut down")
	}
	select {
	case <-req.response:
	case <-h.stopped:
	}
	<-h.stopped
	return nil
}

func classifyCreateError(err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrQueueFull):
		return NewError("CreateBot", ErrQueueFull, err.Error())
	case strings.Contains(err.Error(), "invalid firmware"):
		return NewError("CreateBot", classifyFirmwareError(err), err.Error())
	default:
		return WrapError("CreateBot", err)
	}
}

// classifyFirmwareError maps cpu.LoadFirmware's plain-text errors to a
// machine-readable code. LoadFirmware reports them as fmt.Errorf strings
// rather than sentinel values since internal/cpu has no reason to depend
// on the root package's ErrorCode vocabulary; this is the one seam where
// that text is translated back into one.
func classifyFirmwareError(err error) ErrorCode {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "mismatched architecture"):
		return ErrMismatchedArchitecture
	case strings.Contains(msg, "mismatched endianess"):
		return ErrMismatchedEndianess
	case strings.Contains(msg, "no loadable segments"):
		return ErrNoSegments
	case strings.Contains(msg, "underflows ram"):
		return ErrSegmentUnderflow
	case strings.Contains(msg, "overflows ram"):
		return ErrSegmentOverflow
	default:
		return ErrMalformedELF
	}
}

func classifyLifecycleError(op string, id BotID, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrBotNotFound):
		return NewBotError(op, id, ErrBotNotFound, err.Error())
	case errors.Is(err, lifecycle.ErrQueueFull):
		return NewBotError(op, id, ErrQueueFull, err.Error())
	case errors.Is(err, lifecycle.ErrAliveFull):
		return NewBotError(op, id, ErrAliveFull, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidSpawnPoint):
		return NewBotError(op, id, ErrInvalidSpawnPoint, err.Error())
	default:
		return WrapError(op, err)
	}
}

var _ = core.BotID(0) // keep internal/core imported for the BotID alias used above
