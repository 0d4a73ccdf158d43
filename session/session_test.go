package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mic1/cpu"
)

// clock is a manually advanced time source.
type clock struct {
	mutex sync.Mutex
	now   time.Time
}

func (c *clock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(config Config) (reg *Registry, c *clock) {
	c = &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg = NewRegistry(config)
	reg.now = c.Now
	return
}

func TestCreate(t *testing.T) {
	assert := assert.New(t)

	reg, _ := newTestRegistry(Config{})

	ids := map[string]bool{}
	for range 100 {
		id := reg.Create()
		assert.NotEqual("", id)
		assert.False(ids[id])
		ids[id] = true
	}
	assert.Equal(100, reg.Len())

	// Unknown ids create their session on first use.
	state, err := reg.State("fresh")
	assert.NoError(err)
	assert.Equal(cpu.STACK_BASE, state.Registers.SP)
	assert.Equal(101, reg.Len())

	reg.Delete("fresh")
	assert.Equal(100, reg.Len())

	_, err = reg.State("")
	assert.True(errors.Is(err, ErrSessionId))
}

func TestConfig(t *testing.T) {
	assert := assert.New(t)

	reg, _ := newTestRegistry(Config{MaxCycles: 20, HistoryLimit: 5})

	sess := reg.GetOrCreate("a")
	assert.Equal(20, sess.Emulator.MaxCycles)
	assert.Equal(5, sess.Emulator.Cpu.History.Limit)
	assert.Same(sess, reg.GetOrCreate("a"))

	reg, _ = newTestRegistry(Config{HistoryLimit: -1})
	sess = reg.GetOrCreate("b")
	assert.Equal(cpu.MAX_CYCLES, sess.Emulator.MaxCycles)
	assert.Equal(0, sess.Emulator.Cpu.History.Limit)

	reg, _ = newTestRegistry(Config{})
	sess = reg.GetOrCreate("c")
	assert.Equal(cpu.HISTORY_LIMIT, sess.Emulator.Cpu.History.Limit)
}

func TestFacade(t *testing.T) {
	assert := assert.New(t)

	reg, _ := newTestRegistry(Config{})
	id := reg.Create()

	parsed, err := reg.ParseProgram(id, ".data 100 42\nLODD 100\nADDD 100\nPUSH 3\nPOP")
	assert.NoError(err)
	assert.True(parsed.Valid)

	assert.NoError(reg.LoadProgram(id, parsed.Program))

	words, err := reg.MemoryDump(id, 100, 2)
	assert.NoError(err)
	assert.Equal([]int{42, 0}, words)

	assert.NoError(reg.SetBreakpoint(id, 2))
	assert.NoError(reg.SetBreakpoint(id, 3))
	assert.NoError(reg.ToggleBreakpoint(id, 3))
	assert.NoError(reg.RemoveBreakpoint(id, 4))

	result, err := reg.Step(id)
	assert.NoError(err)
	assert.True(result.Success)
	assert.Equal(42, result.State.Registers.AC)

	result, err = reg.Continue(id)
	assert.NoError(err)
	assert.True(result.Success)
	assert.Equal(84, result.State.Registers.AC)

	info, err := reg.DebugInfo(id)
	assert.NoError(err)
	assert.Equal(2, info.CurrentLine)
	assert.Equal(2, len(info.Breakpoints))

	result, err = reg.Execute(id, false)
	assert.NoError(err)
	assert.True(result.Halted)
	assert.Equal(3, result.State.Registers.AC)

	history, err := reg.History(id)
	assert.NoError(err)
	assert.Equal(4, len(history))

	report, err := reg.StateReport(id)
	assert.NoError(err)
	assert.Contains(report, "Cycle Count: 4\n")

	assert.NoError(reg.Reset(id))
	state, err := reg.State(id)
	assert.NoError(err)
	assert.Equal(0, state.CycleCount)

	result, err = reg.Execute(id, true)
	assert.NoError(err)
	assert.True(result.Halted)

	err = reg.LoadProgram(id, nil)
	assert.Error(err)
}

func TestEvict(t *testing.T) {
	assert := assert.New(t)

	reg, c := newTestRegistry(Config{})

	old := reg.Create()
	c.Advance(30 * time.Minute)
	recent := reg.Create()
	c.Advance(40 * time.Minute)

	assert.Equal(1, reg.Evict(time.Hour))
	assert.Equal(1, reg.Len())

	_, err := reg.State(recent)
	assert.NoError(err)
	assert.Equal(1, reg.Len())

	// Use refreshes the session.
	c.Advance(59 * time.Minute)
	assert.Equal(0, reg.Evict(time.Hour))

	// Evicted ids start over.
	state, err := reg.State(old)
	assert.NoError(err)
	assert.Equal(0, state.CycleCount)
	assert.Equal(2, reg.Len())

	// Sessions in use are not evicted.
	sess := reg.GetOrCreate(recent)
	sess.Lock()
	c.Advance(2 * time.Hour)
	assert.Equal(1, reg.Evict(time.Hour))
	sess.Unlock()
	assert.Equal(1, reg.Evict(time.Hour))
	assert.Equal(0, reg.Len())
}

func TestJanitor(t *testing.T) {
	assert := assert.New(t)

	reg, c := newTestRegistry(Config{IdleTimeout: time.Minute})
	reg.Create()
	c.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- reg.Janitor(ctx, time.Millisecond)
	}()

	assert.Eventually(func() bool { return reg.Len() == 0 }, time.Second, time.Millisecond)

	cancel()
	assert.True(errors.Is(<-done, context.Canceled))
}

func TestConcurrent(t *testing.T) {
	assert := assert.New(t)

	reg, _ := newTestRegistry(Config{})
	id := reg.Create()

	parsed, err := reg.ParseProgram(id, "LOCO 1\nADDD 100\nSTOD 100\nJUMP 1")
	assert.NoError(err)
	assert.NoError(reg.LoadProgram(id, parsed.Program))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, _ = reg.Step(id)
			}
		}()
	}
	wg.Wait()

	info, err := reg.DebugInfo(id)
	assert.NoError(err)
	assert.Equal(800, info.CurrentLine)

	state, err := reg.State(id)
	assert.NoError(err)
	assert.Equal(800, state.CycleCount)
}
