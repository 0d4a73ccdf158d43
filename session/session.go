// Package session maps opaque session identifiers to MIC-1 debug sessions.
//
// Every Registry method that takes a session id locks that session for the
// duration of the call, so concurrent callers on the same id are serialised
// while distinct sessions run in parallel.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ezrec/mic1/cpu"
	"github.com/ezrec/mic1/emulator"
	"github.com/ezrec/mic1/translate"
)

var f = translate.From

var (
	ErrSessionId = errors.New(f("session id missing"))
)

const (
	IDLE_TIMEOUT = time.Hour // Default eviction age.
)

// Config for the sessions of a registry.
type Config struct {
	Verbose      bool          // Enables verbose logging of new sessions.
	MaxCycles    int           // Cycle guard; 0 for cpu.MAX_CYCLES.
	HistoryLimit int           // History ring size; 0 for cpu.HISTORY_LIMIT, < 0 for unbounded.
	IdleTimeout  time.Duration // Janitor eviction age; 0 for IDLE_TIMEOUT.
}

// Session is a single debug session.
type Session struct {
	sync.Mutex
	Id       string             // Session identifier.
	Created  time.Time          // Creation time.
	LastUsed time.Time          // Time of the last locked access.
	Emulator *emulator.Emulator // Session debug controller.
}

// Registry of debug sessions.
type Registry struct {
	Config

	mutex    sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(config Config) (reg *Registry) {
	reg = &Registry{
		Config:   config,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}

	return
}

// newId generates a time-prefixed random session identifier.
func (reg *Registry) newId() string {
	var entropy [8]byte
	_, _ = rand.Read(entropy[:])

	return strconv.FormatInt(reg.now().UnixMilli(), 36) + hex.EncodeToString(entropy[:])
}

// newSession creates a session. The registry must be locked.
func (reg *Registry) newSession(id string) (sess *Session) {
	emu := emulator.NewEmulator()
	emu.Verbose = reg.Verbose
	if reg.MaxCycles > 0 {
		emu.MaxCycles = reg.MaxCycles
	}
	switch {
	case reg.HistoryLimit > 0:
		emu.Cpu.History.Limit = reg.HistoryLimit
	case reg.HistoryLimit < 0:
		emu.Cpu.History.Limit = 0
	}

	now := reg.now()
	sess = &Session{
		Id:       id,
		Created:  now,
		LastUsed: now,
		Emulator: emu,
	}
	reg.sessions[id] = sess

	if reg.Verbose {
		log.Printf("session: %v: created", id)
	}

	return
}

// Create a new session, and return its identifier.
func (reg *Registry) Create() (id string) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	for {
		id = reg.newId()
		if _, ok := reg.sessions[id]; !ok {
			break
		}
	}

	reg.newSession(id)

	return
}

// GetOrCreate returns the session for id, creating it if needed.
func (reg *Registry) GetOrCreate(id string) (sess *Session) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	sess, ok := reg.sessions[id]
	if !ok {
		sess = reg.newSession(id)
	}

	return
}

// Len is the number of sessions.
func (reg *Registry) Len() int {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	return len(reg.sessions)
}

// Delete a session.
func (reg *Registry) Delete(id string) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	delete(reg.sessions, id)
}

// Evict removes the sessions unused for longer than olderThan,
// and returns how many were removed.
func (reg *Registry) Evict(olderThan time.Duration) (count int) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	cutoff := reg.now().Add(-olderThan)
	for id, sess := range reg.sessions {
		// Busy sessions are in use, and so are not stale.
		if !sess.TryLock() {
			continue
		}
		stale := sess.LastUsed.Before(cutoff)
		sess.Unlock()
		if stale {
			delete(reg.sessions, id)
			count++
		}
	}

	if reg.Verbose && count > 0 {
		log.Printf("session: evicted %d", count)
	}

	return
}

// Janitor evicts idle sessions every interval until ctx is done.
func (reg *Registry) Janitor(ctx context.Context, interval time.Duration) error {
	timeout := reg.IdleTimeout
	if timeout <= 0 {
		timeout = IDLE_TIMEOUT
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reg.Evict(timeout)
		}
	}
}

// with runs fn on the locked session for id.
func (reg *Registry) with(id string, fn func(emu *emulator.Emulator)) (err error) {
	if len(id) == 0 {
		err = ErrSessionId
		return
	}

	sess := reg.GetOrCreate(id)

	sess.Lock()
	defer sess.Unlock()

	sess.LastUsed = reg.now()
	fn(sess.Emulator)

	return
}

// ParseProgram parses program text in the session.
func (reg *Registry) ParseProgram(id string, text string) (result emulator.ParseResult, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		result = emu.ParseProgram(text)
	})
	return
}

// LoadProgram loads a parsed program into the session.
func (reg *Registry) LoadProgram(id string, prog *emulator.Program) (err error) {
	werr := reg.with(id, func(emu *emulator.Emulator) {
		err = emu.LoadProgram(prog)
	})
	if werr != nil {
		err = werr
	}
	return
}

// Execute runs, or single steps, the session program.
func (reg *Registry) Execute(id string, stepMode bool) (result emulator.ExecutionResult, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		result = emu.Execute(stepMode)
	})
	return
}

// Step executes one instruction of the session program.
func (reg *Registry) Step(id string) (result emulator.ExecutionResult, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		result = emu.Step()
	})
	return
}

// Continue runs the session program to the next breakpoint.
func (reg *Registry) Continue(id string) (result emulator.ExecutionResult, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		result = emu.Continue()
	})
	return
}

// Reset the session processor.
func (reg *Registry) Reset(id string) (err error) {
	return reg.with(id, func(emu *emulator.Emulator) {
		emu.Reset()
	})
}

// State returns a snapshot of the session processor.
func (reg *Registry) State(id string) (state cpu.State, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		state = emu.State()
	})
	return
}

// DebugInfo returns the session debugger state.
func (reg *Registry) DebugInfo(id string) (info emulator.DebugInfo, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		info = emu.DebugInfo()
	})
	return
}

// MemoryDump returns length words of session memory from start.
func (reg *Registry) MemoryDump(id string, start, length int) (words []int, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		words = emu.GetMemoryDump(start, length)
	})
	return
}

// StateReport returns the session state report.
func (reg *Registry) StateReport(id string) (report string, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		report = emu.GetStateReport()
	})
	return
}

// History returns the session execution history.
func (reg *Registry) History(id string) (history []cpu.HistoryEntry, err error) {
	err = reg.with(id, func(emu *emulator.Emulator) {
		history = emu.History()
	})
	return
}

// SetBreakpoint sets a breakpoint in the session.
func (reg *Registry) SetBreakpoint(id string, line int) (err error) {
	return reg.with(id, func(emu *emulator.Emulator) {
		emu.SetBreakpoint(line)
	})
}

// RemoveBreakpoint removes a breakpoint from the session.
func (reg *Registry) RemoveBreakpoint(id string, line int) (err error) {
	return reg.with(id, func(emu *emulator.Emulator) {
		emu.RemoveBreakpoint(line)
	})
}

// ToggleBreakpoint toggles a breakpoint in the session.
func (reg *Registry) ToggleBreakpoint(id string, line int) (err error) {
	return reg.with(id, func(emu *emulator.Emulator) {
		emu.ToggleBreakpoint(line)
	})
}
