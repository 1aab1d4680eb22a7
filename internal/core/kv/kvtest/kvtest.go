// Package kvtest provides a scriptable in-memory kv.KV for tests: writes can
// be made to fail, counted, or held at a gate so that interleavings of
// concurrent read-modify-write operations become deterministic.
package kvtest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/data/stores"
)

// ErrInjected is the default error returned by scripted failures.
var ErrInjected = errors.New("kvtest: injected failure")

type failure struct {
	err       error
	remaining int // negative means unlimited
}

// Fake is an in-memory kv.KV with failure injection.
type Fake struct {
	mem *stores.MemoryStore

	mu      sync.Mutex
	setErrs map[string]*failure
	getErrs map[string]*failure
	writes  map[string]int
	gates   map[string]*Gate
}

var _ kv.KV = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		mem:     stores.NewMemoryStore(),
		setErrs: make(map[string]*failure),
		getErrs: make(map[string]*failure),
		writes:  make(map[string]int),
		gates:   make(map[string]*Gate),
	}
}

// FailSet makes every Set on key return err until ClearFailures.
func (f *Fake) FailSet(key string, err error) {
	f.FailSetTimes(key, -1, err)
}

// FailSetTimes makes the next n Sets on key return err. A negative n fails
// every Set until ClearFailures; n == 0 removes any scripted Set failure for
// key.
func (f *Fake) FailSetTimes(key string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n == 0 {
		delete(f.setErrs, key)
		return
	}
	f.setErrs[key] = &failure{err: orInjected(err), remaining: n}
}

// FailGet makes every Get on key return err until ClearFailures.
func (f *Fake) FailGet(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErrs[key] = &failure{err: orInjected(err), remaining: -1}
}

// ClearFailures removes all scripted failures.
func (f *Fake) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.setErrs)
	clear(f.getErrs)
}

// Writes returns how many Set calls reached key, including failed ones.
func (f *Fake) Writes(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[key]
}

// Hold installs a gate on key: every subsequent Set on key blocks until the
// pending write obtained from the gate is released.
func (f *Fake) Hold(key string) *Gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &Gate{pending: make(chan *Pending, 16)}
	f.gates[key] = g
	return g
}

func (f *Fake) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	err := take(f.getErrs, key)
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return f.mem.Get(ctx, key)
}

func (f *Fake) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.writes[key]++
	err := take(f.setErrs, key)
	gate := f.gates[key]
	f.mu.Unlock()

	if gate != nil {
		p := &Pending{Key: key, Value: value, release: make(chan struct{})}
		gate.pending <- p
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err != nil {
		return err
	}
	return f.mem.Set(ctx, key, value)
}

func (f *Fake) Remove(ctx context.Context, key string) error {
	return f.mem.Remove(ctx, key)
}

func (f *Fake) ListKeys(ctx context.Context) ([]string, error) {
	return f.mem.ListKeys(ctx)
}

// Gate collects writes blocked on a key.
type Gate struct {
	pending chan *Pending
}

// Next waits for the next blocked write, failing the test after a timeout.
func (g *Gate) Next(t testing.TB) *Pending {
	t.Helper()
	select {
	case p := <-g.pending:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("kvtest: timed out waiting for a held write")
		return nil
	}
}

// Pending is a write held at a gate.
type Pending struct {
	Key   string
	Value string

	release chan struct{}
}

// Release lets the held write proceed.
func (p *Pending) Release() {
	close(p.release)
}

func take(m map[string]*failure, key string) error {
	fl, ok := m[key]
	if !ok {
		return nil
	}
	if fl.remaining > 0 {
		fl.remaining--
		if fl.remaining == 0 {
			delete(m, key)
		}
	}
	return fl.err
}

func orInjected(err error) error {
	if err == nil {
		return ErrInjected
	}
	return err
}
