// Package cache implements a keyed read-through cache for remote
// collections. Each key holds the latest payload, the latest error, and a
// loading flag. Concurrent reads of a key share one upstream fetch, and
// responses that land out of order are discarded in favor of the newest
// issued fetch.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/jobhub/ui-api/internal/errors"
)

// Fetcher loads the payload for a key from the source of truth.
type Fetcher func(ctx context.Context) (json.RawMessage, error)

// Updater rewrites a cached payload for an optimistic mutation. It must be
// pure: no I/O, no retained references to the input.
type Updater func(data json.RawMessage) json.RawMessage

// Entry is a point-in-time snapshot of one key.
type Entry struct {
	Key           string
	Data          json.RawMessage
	Err           error
	IsLoading     bool
	LastFetchedAt time.Time
}

// Options configures a Store.
type Options struct {
	// TTL is the freshness window. A read past the TTL serves the cached
	// payload and revalidates in the background. Zero disables TTL refresh.
	TTL time.Duration
	// FetchTimeout bounds a single upstream fetch. Defaults to 10s.
	FetchTimeout time.Duration
	// Clock overrides time.Now for tests.
	Clock func() time.Time
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

const defaultFetchTimeout = 10 * time.Second

// Store is the collection cache. All exported methods are safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	records map[string]*record

	group        singleflight.Group
	ttl          time.Duration
	fetchTimeout time.Duration
	clock        func() time.Time
	logger       *slog.Logger
}

// record is the mutable per-key state, guarded by Store.mu.
type record struct {
	data          json.RawMessage
	err           error
	lastFetchedAt time.Time

	// lastGood is the most recent payload confirmed by a successful
	// fetch; optimistic overlays roll back to it.
	lastGood   json.RawMessage
	hasGood    bool
	optimistic bool

	// stale is set by Invalidate and cleared once a fetch issued at or
	// after freshAfter lands.
	stale      bool
	freshAfter uint64

	fetch   Fetcher
	issued  uint64 // highest fetch number handed out
	applied uint64 // highest fetch number applied
	settled chan struct{}
}

func (r *record) loading() bool { return r.issued > r.applied }

// NewStore creates a Store.
func NewStore(opts Options) *Store {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		records:      make(map[string]*record),
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
}

// Read returns the current snapshot for key, starting a fetch when the key
// is missing, invalidated, or past its TTL. Read never blocks on the
// network; callers that need settled data use Get.
func (s *Store) Read(ctx context.Context, key string, fetch Fetcher) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[key]
	if rec == nil {
		rec = &record{}
		s.records[key] = rec
	}
	if fetch != nil {
		rec.fetch = fetch
	}

	if !rec.loading() && rec.fetch != nil && s.needsFetchLocked(rec) {
		s.startFetchLocked(key, rec)
	}
	return s.snapshotLocked(key, rec)
}

// Get blocks until key has settled data, triggering a fetch if needed. It
// returns the payload and the keyed error; both reflect the newest applied
// fetch. Waiting is bounded by ctx.
func (s *Store) Get(ctx context.Context, key string, fetch Fetcher) (json.RawMessage, error) {
	for {
		s.Read(ctx, key, fetch)

		s.mu.Lock()
		rec := s.records[key]
		if rec == nil {
			s.mu.Unlock()
			return nil, apperrors.Internalf("cache record for %s vanished", key)
		}
		if !rec.loading() || (rec.applied > 0 && !rec.stale) {
			data, err := rec.data, rec.err
			s.mu.Unlock()
			return data, err
		}
		ch := rec.settled
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "timed out waiting for "+key)
		case <-ch:
		}
	}
}

// Peek returns the snapshot for key without triggering any fetch.
func (s *Store) Peek(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return Entry{}, false
	}
	return s.snapshotLocked(key, rec), true
}

// Invalidate marks key stale and issues a confirming refetch. Responses
// from fetches issued before the invalidation can still apply in order but
// never clear staleness, so readers settle only on post-invalidation data.
// Keys that were never read are a no-op: the next read fetches fresh.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked(key)
}

// Mutate applies an optimistic overlay to key's payload and then issues a
// confirming refetch. If the refetch fails the overlay is rolled back to
// the last confirmed payload.
func (s *Store) Mutate(key string, update Updater) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[key]
	if rec == nil {
		return
	}
	if rec.hasGood && update != nil {
		rec.data = update(rec.data)
		rec.optimistic = true
	}
	s.invalidateLocked(key)
}

// ApplyOptimistic overlays key's payload without refetching. Callers pair
// it with Invalidate on success or Rollback on failure. Keys without a
// confirmed payload are skipped: there is nothing to overlay or restore.
func (s *Store) ApplyOptimistic(key string, update Updater) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[key]
	if rec == nil || !rec.hasGood || update == nil {
		return
	}
	rec.data = update(rec.data)
	rec.optimistic = true
}

// Rollback restores key's last confirmed payload, discarding any
// optimistic overlay. No refetch is issued.
func (s *Store) Rollback(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[key]
	if rec == nil || !rec.optimistic {
		return
	}
	rec.data = rec.lastGood
	rec.optimistic = false
}

// Evict drops key entirely. The next read starts from scratch.
func (s *Store) Evict(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		delete(s.records, key)
		s.group.Forget(key)
	}
}

func (s *Store) invalidateLocked(key string) {
	rec := s.records[key]
	if rec == nil || rec.fetch == nil {
		return
	}
	rec.stale = true
	// Detach any in-flight call so the refetch observes post-write state.
	s.group.Forget(key)
	s.startFetchLocked(key, rec)
	rec.freshAfter = rec.issued
}

// needsFetchLocked reports whether a settled record should refetch.
func (s *Store) needsFetchLocked(rec *record) bool {
	if rec.applied == 0 || rec.stale {
		return true
	}
	// A key whose fetches have never succeeded retries on the next read
	// rather than pinning its first error until something invalidates it.
	if rec.err != nil && !rec.hasGood {
		return true
	}
	if s.ttl > 0 && !rec.lastFetchedAt.IsZero() {
		return s.clock().Sub(rec.lastFetchedAt) > s.ttl
	}
	return false
}

func (s *Store) startFetchLocked(key string, rec *record) {
	if !rec.loading() {
		rec.settled = make(chan struct{})
	}
	rec.issued++
	issue := rec.issued
	fetch := rec.fetch
	go s.doFetch(key, issue, fetch)
}

func (s *Store) doFetch(key string, issue uint64, fetch Fetcher) {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	v, err, _ := s.group.Do(key, func() (any, error) {
		return fetch(ctx)
	})
	var data json.RawMessage
	if v != nil {
		data, _ = v.(json.RawMessage)
	}
	s.apply(key, issue, data, err)
}

// apply records a fetch result. Results are applied in issue order: a
// response for an older fetch than the newest applied one is discarded.
func (s *Store) apply(key string, issue uint64, data json.RawMessage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[key]
	if rec == nil {
		return // evicted while in flight
	}
	if issue <= rec.applied {
		s.logger.Debug("discarding stale cache response",
			"key", key, "issue", issue, "applied", rec.applied)
		return
	}
	rec.applied = issue

	if err != nil {
		rec.err = err
		if rec.optimistic {
			// The confirming refetch failed; undo the overlay.
			if rec.hasGood {
				rec.data = rec.lastGood
			} else {
				rec.data = nil
			}
			rec.optimistic = false
		}
		s.logger.Warn("cache fetch failed", "key", key, "error", err)
	} else {
		rec.data = data
		rec.err = nil
		rec.lastGood = data
		rec.hasGood = true
		rec.optimistic = false
		rec.lastFetchedAt = s.clock()
	}

	if issue >= rec.freshAfter {
		rec.stale = false
	}
	if issue == rec.issued {
		close(rec.settled)
	}
}

func (s *Store) snapshotLocked(key string, rec *record) Entry {
	return Entry{
		Key:           key,
		Data:          rec.data,
		Err:           rec.err,
		IsLoading:     rec.loading(),
		LastFetchedAt: rec.lastFetchedAt,
	}
}
