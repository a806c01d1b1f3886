// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"
)

// =============================================================================
// INACTIVITY WATCHDOG
// =============================================================================

const (
	// DefaultIdleThreshold is how long a session survives without activity.
	DefaultIdleThreshold = 30 * time.Minute

	// DefaultWarnBefore is how long before expiry the warning callback
	// fires.
	DefaultWarnBefore = 2 * time.Minute
)

// WatchdogConfig configures the inactivity watchdog.
type WatchdogConfig struct {
	// IdleThreshold is the inactivity duration after which the session
	// expires (default: 30 minutes).
	IdleThreshold time.Duration

	// WarnBefore is how long before expiry to fire the warning callback.
	// Zero disables the warning.
	WarnBefore time.Duration
}

// DefaultWatchdogConfig returns the default watchdog configuration.
func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		IdleThreshold: DefaultIdleThreshold,
		WarnBefore:    DefaultWarnBefore,
	}
}

// Watchdog force-expires the session after a period without activity
// signals. It is a pure countdown machine: callers feed it abstract Signal()
// calls, and the concrete input events (key presses, mouse, resize) live in
// an adapter outside this package, so expiry logic is testable with
// synthetic signals.
//
// Each Signal cancels the pending countdown and arms a fresh one. This is a
// debounce, not a rate limiter: constant activity postpones expiry forever.
// A generation counter guards against a timer that was already in flight
// when it was cancelled; a stale generation never fires a callback.
type Watchdog struct {
	mu sync.Mutex

	threshold  time.Duration
	warnBefore time.Duration

	onExpire func()
	onWarn   func(remaining time.Duration)

	running    bool
	gen        uint64
	lastSignal time.Time

	expireTimer *time.Timer
	warnTimer   *time.Timer
}

// NewWatchdog creates a stopped watchdog with the given configuration.
// Non-positive thresholds fall back to the defaults.
func NewWatchdog(cfg WatchdogConfig) *Watchdog {
	if cfg.IdleThreshold <= 0 {
		cfg.IdleThreshold = DefaultIdleThreshold
	}
	return &Watchdog{
		threshold:  cfg.IdleThreshold,
		warnBefore: cfg.WarnBefore,
	}
}

// SetExpireCallback sets the function run when the countdown elapses. It
// runs at most once per armed cycle, on the timer goroutine.
func (w *Watchdog) SetExpireCallback(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onExpire = fn
}

// SetWarnCallback sets the function run when remaining time first crosses
// the warn threshold.
func (w *Watchdog) SetWarnCallback(fn func(remaining time.Duration)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onWarn = fn
}

// Start arms the countdown. Starting a running watchdog rearms it.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = true
	w.rearmLocked()
}

// Stop cancels the pending countdown and removes the watchdog from duty.
// After Stop returns no expiry or warning fires until the next Start, even
// if a timer callback was already scheduled.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	w.gen++
	w.stopTimersLocked()
}

// Signal records qualifying user activity: it cancels the current countdown
// and arms a fresh one for the full threshold. No-op while stopped.
func (w *Watchdog) Signal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.rearmLocked()
}

// Running reports whether the watchdog is armed.
func (w *Watchdog) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Remaining returns the time left until expiry, or 0 when stopped.
func (w *Watchdog) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return 0
	}
	remaining := w.threshold - time.Since(w.lastSignal)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IdleThreshold returns the configured inactivity threshold.
func (w *Watchdog) IdleThreshold() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.threshold
}

// =============================================================================
// INTERNAL
// =============================================================================

// rearmLocked is cancellation-of-previous plus arm-new under one lock hold,
// so there is no window in which two countdowns exist. Callers hold w.mu.
func (w *Watchdog) rearmLocked() {
	w.gen++
	gen := w.gen
	w.lastSignal = time.Now()
	w.stopTimersLocked()

	w.expireTimer = time.AfterFunc(w.threshold, func() {
		w.fireExpire(gen)
	})

	if w.warnBefore > 0 && w.warnBefore < w.threshold {
		w.warnTimer = time.AfterFunc(w.threshold-w.warnBefore, func() {
			w.fireWarn(gen)
		})
	}
}

func (w *Watchdog) stopTimersLocked() {
	if w.expireTimer != nil {
		w.expireTimer.Stop()
		w.expireTimer = nil
	}
	if w.warnTimer != nil {
		w.warnTimer.Stop()
		w.warnTimer = nil
	}
}

func (w *Watchdog) fireExpire(gen uint64) {
	w.mu.Lock()
	if !w.running || gen != w.gen {
		w.mu.Unlock()
		return
	}
	// Expiry is terminal for this cycle; Start rearms.
	w.running = false
	w.gen++
	w.stopTimersLocked()
	callback := w.onExpire
	w.mu.Unlock()

	logSessionEvent("IDLE_EXPIRED", "")
	if callback != nil {
		callback()
	}
}

func (w *Watchdog) fireWarn(gen uint64) {
	w.mu.Lock()
	if !w.running || gen != w.gen {
		w.mu.Unlock()
		return
	}
	callback := w.onWarn
	remaining := w.warnBefore
	w.mu.Unlock()

	if callback != nil {
		callback(remaining)
	}
}
