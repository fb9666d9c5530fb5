// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/vgraph"
)

// State is the scheduling state of a Loop.
type State int32

const (
	// StateIdle means no frame callback is pending.
	StateIdle State = iota
	// StateScheduled means a frame callback is pending with the Scheduler.
	StateScheduled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Loop redraws the current document state once per display frame.
//
// On every frame it reads the visible paths from its StateSource,
// rebuilds and draws the frame (or redraws the last one when a versioned
// source is unchanged), notifies the frontend and schedules the next
// frame. Frame errors are logged and never stop the loop; only Stop does.
type Loop struct {
	renderer *Renderer
	source   StateSource
	sched    Scheduler
	notifier Notifier

	state   atomic.Int32
	stopped atomic.Bool

	frame       uint64
	version     uint64
	haveVersion bool
}

// NewLoop uploads empty geometry once, schedules the first frame and
// returns the loop in StateScheduled. Errors wrap vgraph.ErrSetup.
func NewLoop(r *Renderer, source StateSource, sched Scheduler, opts ...LoopOption) (*Loop, error) {
	switch {
	case r == nil:
		return nil, fmt.Errorf("%w: nil renderer", vgraph.ErrSetup)
	case source == nil:
		return nil, fmt.Errorf("%w: nil state source", vgraph.ErrSetup)
	case sched == nil:
		return nil, fmt.Errorf("%w: nil scheduler", vgraph.ErrSetup)
	}
	var o loopOptions
	for _, opt := range opts {
		opt(&o)
	}

	l := &Loop{renderer: r, source: source, sched: sched, notifier: o.notifier}
	if err := r.UploadEmpty(); err != nil {
		return nil, fmt.Errorf("%w: initial upload: %w", vgraph.ErrSetup, err)
	}
	vgraph.Logger().Info("render: loop started", "policy", r.Policy().String())
	l.schedule()
	return l, nil
}

// State returns the scheduling state.
func (l *Loop) State() State { return State(l.state.Load()) }

// Frame returns the number of frames drawn so far.
func (l *Loop) Frame() uint64 { return l.frame }

// Stop ends rescheduling. A pending callback still runs but does nothing.
func (l *Loop) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		vgraph.Logger().Info("render: loop stopped", "frames", l.frame)
	}
}

// Stopped reports whether Stop was called.
func (l *Loop) Stopped() bool { return l.stopped.Load() }

func (l *Loop) schedule() {
	if l.stopped.Load() {
		return
	}
	l.state.Store(int32(StateScheduled))
	l.sched.RequestFrame(l.tick)
}

func (l *Loop) tick() {
	l.state.Store(int32(StateIdle))
	if l.stopped.Load() {
		return
	}
	defer l.schedule()

	paths, ok := l.source.VisiblePaths()
	if !ok {
		vgraph.Logger().Debug("render: state unavailable, frame skipped")
		return
	}
	l.frame++

	var err error
	if v, versioned := l.source.(Versioned); versioned {
		ver := v.Version()
		if l.haveVersion && ver == l.version {
			_, err = l.renderer.Redraw()
		} else {
			_, err = l.renderer.DrawPaths(paths)
			l.version, l.haveVersion = ver, err == nil
		}
	} else {
		_, err = l.renderer.DrawPaths(paths)
	}
	if err != nil {
		vgraph.Logger().Warn("render: frame failed", "frame", l.frame, "err", err)
	}

	if l.notifier != nil {
		l.notifier.ArtworkUpdated(l.frame)
	}
}
