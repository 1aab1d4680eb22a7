// Package docket owns the in-memory todo, list and idea collections and
// keeps them in step with the key-value adapter.
package docket

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/colonyops/docket/internal/core/codec"
	"github.com/colonyops/docket/internal/core/ident"
	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/query"
	"github.com/colonyops/docket/internal/core/todo"
)

// ReloadFailed is the count ReloadFromStore returns when the re-read failed.
const ReloadFailed = -1

// Repository is the single owner of the persisted collections.
//
// Every mutation snapshots the collection under mu, releases the lock while
// the whole collection is encoded and written, and then replaces the
// collection in memory. Two overlapping mutations of the same collection
// therefore start from the same snapshot and the one that finishes last
// wins, both in the store and in memory. Collections are never modified in
// place, so a snapshot stays valid after the lock is released.
type Repository struct {
	store  kv.KV
	log    zerolog.Logger
	clock  func() time.Time
	ids    ident.Generator
	engine *query.Engine

	mu       sync.Mutex
	todos    []todo.Todo
	lists    []todo.List
	ideas    []todo.Idea
	view     query.View
	ideaView query.IdeaView
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger. The default is logging.Component("repository").
func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) { r.log = l.Hook(logging.ContextHook{}) }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.clock = now }
}

// WithIDGenerator sets the id strategy.
func WithIDGenerator(g ident.Generator) Option {
	return func(r *Repository) { r.ids = g }
}

// WithLocale sets the collation locale for title sorting.
func WithLocale(tag language.Tag) Option {
	return func(r *Repository) { r.engine = query.New(tag) }
}

// WithViews sets the initial todo and idea views.
func WithViews(v query.View, iv query.IdeaView) Option {
	return func(r *Repository) {
		r.view = v
		r.ideaView = iv
	}
}

// New creates a Repository over store. Call Load before reading.
func New(store kv.KV, opts ...Option) *Repository {
	r := &Repository{
		store:    store,
		log:      logging.Component("repository"),
		clock:    time.Now,
		ids:      ident.TimeRandom{},
		engine:   query.New(language.English),
		lists:    []todo.List{},
		todos:    []todo.Todo{},
		ideas:    []todo.Idea{},
		view:     query.DefaultView(),
		ideaView: query.DefaultIdeaView(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// now returns the current time at the wire resolution.
func (r *Repository) now() time.Time {
	return r.clock().UTC().Truncate(time.Millisecond)
}

// Load reads all three collections from the store and replaces the
// in-memory state. Absent keys seed empty collections; the list collection
// always contains the default list. On a read error nothing is replaced.
func (r *Repository) Load(ctx context.Context) error {
	ctx = logging.WithOperation(ctx, orOp(ctx, "load"))
	now := r.now()

	todos, todosReport, err := readCollection(ctx, r, kv.KeyTodos, now, codec.DecodeTodos)
	if err != nil {
		return err
	}

	lists, listsReport, err := readCollection(ctx, r, kv.KeyTodoLists, now, codec.DecodeLists)
	if err != nil {
		return err
	}
	seeded := false
	if !slices.ContainsFunc(lists, todo.List.IsDefault) {
		lists = slices.Insert(lists, 0, todo.DefaultList(now))
		seeded = true
	}

	ideas, ideasReport, err := readCollection(ctx, r, kv.KeyIdeas, now, codec.DecodeIdeas)
	if err != nil {
		return err
	}

	if todosReport.Upgraded() {
		writeBack(ctx, r, kv.KeyTodos, todos, codec.EncodeTodos)
	}
	if seeded || listsReport.Upgraded() {
		writeBack(ctx, r, kv.KeyTodoLists, lists, codec.EncodeLists)
	}
	if ideasReport.Upgraded() {
		writeBack(ctx, r, kv.KeyIdeas, ideas, codec.EncodeIdeas)
	}

	r.mu.Lock()
	r.todos = todos
	r.lists = lists
	r.ideas = ideas
	if r.view.ListID != "" && !containsList(lists, r.view.ListID) {
		r.view.ListID = ""
	}
	r.mu.Unlock()

	r.log.Debug().Ctx(ctx).
		Int("todos", len(todos)).
		Int("lists", len(lists)).
		Int("ideas", len(ideas)).
		Msg("collections loaded")
	return nil
}

// writeBack stores a collection that Load had to complete: the seeded
// default list, upgraded legacy records or repaired timestamps. Without it
// every later Load would fill the same gaps with a different time. The write
// is best effort; memory holds the completed collection either way.
func writeBack[T any](ctx context.Context, r *Repository, key string, items []T, encode func([]T) ([]byte, error)) {
	ctx = logging.WithCollection(ctx, key)
	if err := writeCollection(ctx, r, key, items, encode); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Int("count", len(items)).Msg("could not write back loaded collection")
	}
}

// ReloadFromStore re-reads every collection from the store, bypassing
// memory, and returns the number of todos recovered. On failure it returns
// ReloadFailed and the error; the previous in-memory state is kept.
func (r *Repository) ReloadFromStore(ctx context.Context) (int, error) {
	ctx = logging.WithOperation(ctx, orOp(ctx, "reload"))
	if err := r.Load(ctx); err != nil {
		r.log.Error().Ctx(ctx).Err(err).Msg("reload failed")
		return ReloadFailed, err
	}

	r.mu.Lock()
	n := len(r.todos)
	r.mu.Unlock()
	return n, nil
}

// readCollection reads and decodes one collection. An absent key yields an
// empty collection and a zero Report. Decoding never fails; what it had to
// tolerate is logged.
func readCollection[T any](
	ctx context.Context,
	r *Repository,
	key string,
	now time.Time,
	decode func([]byte, time.Time) ([]T, codec.Report),
) ([]T, codec.Report, error) {
	ctx = logging.WithCollection(ctx, key)

	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []T{}, codec.Report{}, nil
		}
		return nil, codec.Report{}, fmt.Errorf("read %s: %w", key, err)
	}

	items, report := decode([]byte(raw), now)
	switch {
	case report.Corrupt:
		r.log.Warn().Ctx(ctx).Int("bytes", len(raw)).Msg("collection is not valid JSON, treating it as empty")
	case report.Skipped > 0:
		r.log.Warn().Ctx(ctx).Int("skipped", report.Skipped).Int("kept", len(items)).Msg("dropped malformed records")
	}
	if report.Upgraded() {
		r.log.Debug().Ctx(ctx).
			Int("migrated", report.Migrated).
			Int("repaired", report.Repaired).
			Msg("upgraded legacy records")
	}
	return items, report, nil
}

// writeCollection encodes the whole collection and stores it under key.
func writeCollection[T any](
	ctx context.Context,
	r *Repository,
	key string,
	items []T,
	encode func([]T) ([]byte, error),
) error {
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// logUnpersisted records a mutation that was committed in memory although
// its write failed.
func (r *Repository) logUnpersisted(ctx context.Context, key string, count int, err error) {
	r.log.Error().Ctx(ctx).
		Err(err).
		Str("key", key).
		Int("count", count).
		Msg("change kept in memory but not persisted")
}

// logFallback records the outcome of a reduced-record fallback write.
func (r *Repository) logFallback(ctx context.Context, key, id string, err error) {
	if err != nil {
		r.log.Error().Ctx(ctx).Err(err).Str("key", key).Str("id", id).Msg("fallback write failed")
		return
	}
	r.log.Warn().Ctx(ctx).Str("key", key).Str("id", id).Msg("fallback write stored a reduced record")
}

// orOp keeps an operation name already on ctx, otherwise uses op.
func orOp(ctx context.Context, op string) string {
	if existing := logging.GetOperation(ctx); existing != "" {
		return existing
	}
	return op
}

func containsList(lists []todo.List, id string) bool {
	return slices.ContainsFunc(lists, func(l todo.List) bool { return l.ID == id })
}

func listNotFound(id string) error {
	return todo.Invalid(fmt.Errorf("list %q: %w", id, todo.ErrListNotFound))
}
