// Package history keeps the list of recent scans: newest first, one entry
// per barcode, bounded in length, and persisted as a single JSON value in a
// kvstore.Store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang.org/x/xerrors"

	"easyfilter/pkg/config"
	"easyfilter/pkg/kvstore"
	"easyfilter/pkg/log"
)

// ErrPersistenceCorrupt marks a stored history that could not be parsed.
// Load recovers from it by starting empty.
var ErrPersistenceCorrupt = errors.New("stored history is corrupt")

// ScanRecord is one entry of the history.
type ScanRecord struct {
	Barcode     string
	ScannedAt   time.Time
	DisplayTime string
}

// Renderer is notified with the full list after every change.
type Renderer interface {
	RenderHistory(records []ScanRecord)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(records []ScanRecord)

func (f RendererFunc) RenderHistory(records []ScanRecord) { f(records) }

// Store is the in-memory history backed by a kvstore.Store.
type Store struct {
	backend  kvstore.Store
	key      string
	limit    int
	now      func() time.Time
	loc      *time.Location
	renderer Renderer

	mu      sync.Mutex
	records []ScanRecord
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithLocation sets the zone display times are formatted in.
func WithLocation(loc *time.Location) Option { return func(s *Store) { s.loc = loc } }

// WithRenderer sets the list view to refresh after changes.
func WithRenderer(r Renderer) Option { return func(s *Store) { s.renderer = r } }

// WithKey changes the store key.
func WithKey(key string) Option { return func(s *Store) { s.key = key } }

// WithLimit changes the maximum number of records kept.
func WithLimit(n int) Option { return func(s *Store) { s.limit = n } }

// New creates an empty history. Call Load to read the persisted list.
func New(backend kvstore.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     config.DefaultHistoryKey,
		limit:   config.DefaultHistoryLimit,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one. A missing,
// unreadable or corrupt value yields an empty history; Load never fails.
func (s *Store) Load(ctx context.Context) {
	records, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, ErrPersistenceCorrupt) {
			log.Debug("Discarding stored history: %v", err)
		} else {
			log.Warn("Could not read history, starting empty: %v", err)
		}
		records = nil
	}

	s.mu.Lock()
	s.records = records
	snapshot := s.snapshot()
	s.mu.Unlock()

	log.Debug("Loaded %d recent scans", len(snapshot))
	s.render(snapshot)
}

func (s *Store) read(ctx context.Context) ([]ScanRecord, error) {
	blob, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || blob == "" {
		return nil, nil
	}
	records, err := decode([]byte(blob))
	if err != nil {
		return nil, err
	}
	// Enforce the invariants on data written by someone else.
	out := make([]ScanRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.Barcode] {
			continue
		}
		seen[r.Barcode] = true
		out = append(out, r)
		if len(out) == s.limit {
			break
		}
	}
	return out, nil
}

// Record puts barcode at the front of the history with the current time,
// dropping any older entry for the same barcode and anything past the limit.
// The whole list is then persisted and rendered. A persistence error is
// returned but the in-memory history is updated regardless.
func (s *Store) Record(ctx context.Context, barcode string) (ScanRecord, error) {
	at := s.now()
	rec := ScanRecord{
		Barcode:     barcode,
		ScannedAt:   at,
		DisplayTime: FormatDisplayTime(at, s.loc),
	}

	s.mu.Lock()
	next := make([]ScanRecord, 0, len(s.records)+1)
	next = append(next, rec)
	for _, r := range s.records {
		if r.Barcode != barcode {
			next = append(next, r)
		}
	}
	if len(next) > s.limit {
		next = next[:s.limit]
	}
	s.records = next
	snapshot := s.snapshot()
	s.mu.Unlock()

	err := s.persist(ctx, snapshot)
	s.render(snapshot)
	return rec, err
}

func (s *Store) persist(ctx context.Context, records []ScanRecord) error {
	blob, err := encode(records, s.loc)
	if err != nil {
		return xerrors.Errorf("failed to encode history: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, string(blob)); err != nil {
		return xerrors.Errorf("failed to persist history: %w", err)
	}
	return nil
}

// Select looks up the entry for barcode without changing the history.
func (s *Store) Select(barcode string) (ScanRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Barcode == barcode {
			return r, true
		}
	}
	return ScanRecord{}, false
}

// Records returns a copy of the history, newest first.
func (s *Store) Records() []ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// snapshot must be called with s.mu held.
func (s *Store) snapshot() []ScanRecord {
	return append([]ScanRecord(nil), s.records...)
}

func (s *Store) render(records []ScanRecord) {
	if s.renderer != nil {
		s.renderer.RenderHistory(records)
	}
}

// --- Persistence format ---

// isoMillis matches JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type storedRecord struct {
	Barcode   string `json:"barcode"`
	Timestamp string `json:"timestamp"`
	Time      string `json:"time"`
}

// encode regenerates each display time from its timestamp.
func encode(records []ScanRecord, loc *time.Location) ([]byte, error) {
	out := make([]storedRecord, len(records))
	for i, r := range records {
		out[i] = storedRecord{
			Barcode:   r.Barcode,
			Timestamp: r.ScannedAt.UTC().Format(isoMillis),
			Time:      FormatDisplayTime(r.ScannedAt, loc),
		}
	}
	return json.Marshal(out)
}

func decode(blob []byte) ([]ScanRecord, error) {
	var stored []storedRecord
	if err := json.Unmarshal(blob, &stored); err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrPersistenceCorrupt)
	}
	records := make([]ScanRecord, 0, len(stored))
	for i, r := range stored {
		if r.Barcode == "" {
			return nil, xerrors.Errorf("entry %d has no barcode: %w", i, ErrPersistenceCorrupt)
		}
		at, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %v: %w", i, err, ErrPersistenceCorrupt)
		}
		records = append(records, ScanRecord{Barcode: r.Barcode, ScannedAt: at, DisplayTime: r.Time})
	}
	return records, nil
}
