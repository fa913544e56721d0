// Package progress provides thread-safe scan progress reporting. The
// scanning goroutine writes updates; any number of UI goroutines sample
// or subscribe to them.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/dupesweep/dupesweep/pkg/utils"
)

// Phase represents the scan engine's current phase.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseCollecting   Phase = "collecting"
	PhaseHashing      Phase = "hashing"
	PhaseQuickHashing Phase = "quick-hashing"
	PhaseFullHashing  Phase = "full-hashing"
	PhaseDirHashing   Phase = "dir-hashing"
	PhaseFlushing     Phase = "flushing"
	PhaseDone         Phase = "done"
	PhaseCancelled    Phase = "cancelled"
)

// Update is a snapshot of scan progress at one point in time.
type Update struct {
	Phase       Phase
	CurrentPath string
	FilesHashed int
	DirsHashed  int
	BytesHashed int64
	Errors      int
	StartTime   time.Time
}

// Reporter fans scan progress out to listeners. Updates are written only
// by the scanning goroutine; reads may happen concurrently from anywhere.
type Reporter struct {
	mu        sync.RWMutex
	latest    *Update
	listeners []chan Update
}

// NewReporter creates a new progress reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Subscribe returns a channel that receives progress updates. Slow
// listeners miss intermediate updates rather than stalling the scan.
func (r *Reporter) Subscribe() <-chan Update {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Update, 16)
	r.listeners = append(r.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel.
func (r *Reporter) Unsubscribe(ch <-chan Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, listener := range r.listeners {
		if listener == ch {
			close(listener)
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Publish records the latest update and notifies listeners without
// blocking.
func (r *Reporter) Publish(u Update) {
	r.mu.Lock()
	r.latest = &u
	listeners := make([]chan Update, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- u:
		default:
			// Skip if channel is full.
		}
	}
}

// Latest returns the most recent update, or nil before the first one.
func (r *Reporter) Latest() *Update {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Format returns a human-readable one-line summary of an update.
func Format(u *Update) string {
	if u == nil {
		return "Initializing..."
	}

	elapsed := time.Since(u.StartTime).Round(time.Second)

	switch u.Phase {
	case PhaseIdle:
		return "Idle"
	case PhaseCollecting:
		return fmt.Sprintf("Collecting files... [%s]", elapsed)
	case PhaseHashing, PhaseQuickHashing, PhaseFullHashing:
		return fmt.Sprintf("Hashing... %d files (%s) [%s]",
			u.FilesHashed, utils.FormatBytes(u.BytesHashed), elapsed)
	case PhaseDirHashing:
		return fmt.Sprintf("Hashing directories... %d done [%s]", u.DirsHashed, elapsed)
	case PhaseFlushing:
		return "Saving index..."
	case PhaseDone:
		return fmt.Sprintf("Scan complete: %d files, %d dirs, %d errors in %s",
			u.FilesHashed, u.DirsHashed, u.Errors, elapsed)
	case PhaseCancelled:
		return fmt.Sprintf("Scan stopped: %d files hashed before cancellation", u.FilesHashed)
	default:
		return "Scanning..."
	}
}
