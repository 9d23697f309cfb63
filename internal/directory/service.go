// Package directory is the application core: it fetches the published sheet
// export, turns it into canonical records, and answers search, detail, and
// export queries with render-ready payloads.
//
// Batch state is explicit and replaced wholesale on every successful fetch;
// nothing mutates a batch in place while a request is reading it. Fetches
// carry a monotonically increasing sequence number so a slow response that
// loses the race against a later one is discarded instead of clobbering
// fresher data.
package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"compdir/internal/config"
	"compdir/internal/csv"
	"compdir/internal/logging"
	"compdir/internal/record"
)

// ErrNoBatch is returned when no sheet fetch has succeeded yet.
var ErrNoBatch = errors.New("directory: no sheet data loaded")

// ErrStaleFetch marks a fetch whose response arrived after a later fetch
// had already been applied; its data was discarded.
var ErrStaleFetch = errors.New("directory: stale fetch discarded")

// maxFetchBytes bounds a sheet download; published club sheets are a few
// hundred KB at most.
const maxFetchBytes = 10 << 20

// Batch is one fully parsed generation of the sheet.
type Batch struct {
	Records   []record.Canonical
	FetchedAt time.Time
	Seq       uint64

	byID map[string]int
}

// ByID returns the record with the given canonical id.
func (b *Batch) ByID(id string) (record.Canonical, bool) {
	i, ok := b.byID[id]
	if !ok {
		return record.Canonical{}, false
	}
	return b.Records[i], true
}

// Service owns the current batch and everything needed to rebuild it.
type Service struct {
	cfg      config.SheetConfig
	client   *http.Client
	resolver *record.Resolver
	norm     *record.Normalizer
	sections []record.Section
	now      func() time.Time

	mu      sync.RWMutex
	batch   *Batch
	applied uint64

	seq atomic.Uint64
}

// NewService validates the field and section configuration and wires a
// service against the configured sheet URL.
func NewService(cfg config.SheetConfig, fields record.FieldMap, sections []record.Section, fallback []record.DetailSource) (*Service, error) {
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("field map: %w", err)
	}
	if err := record.ValidateSections(sections); err != nil {
		return nil, fmt.Errorf("sections: %w", err)
	}

	resolver := record.NewResolver(fields)
	return &Service{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		resolver: resolver,
		norm:     record.NewNormalizer(resolver, fallback),
		sections: sections,
		now:      time.Now,
	}, nil
}

// Refresh fetches the sheet export and replaces the current batch. Returns
// ErrStaleFetch when a later fetch was applied first; the caller already has
// fresher data and should not surface that as a failure.
func (s *Service) Refresh(ctx context.Context) error {
	seq := s.seq.Add(1)
	logger := logging.WithFields(ctx, "fetch_seq", seq)

	text, err := s.fetch(ctx)
	if err != nil {
		logger.Error("sheet fetch failed", "error", err)
		return fmt.Errorf("fetch sheet: %w", err)
	}

	batch := s.buildBatch(text, seq)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		logger.Warn("discarding stale sheet response", "applied_seq", s.applied)
		return ErrStaleFetch
	}
	s.batch = batch
	s.applied = seq

	logger.Info("sheet loaded", "rows", len(batch.Records))
	return nil
}

// fetch downloads the export. A cache-busting query parameter and no-store
// directive defeat stale intermediary caches on every load.
func (s *Service) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return "", err
	}

	q := req.URL.Query()
	q.Set("cb", strconv.FormatInt(s.now().UnixNano(), 10))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("sheet returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read sheet body: %w", err)
	}
	return string(body), nil
}

// buildBatch parses and normalizes the export. Synthesized ids that collide
// within the batch get -2, -3, ... suffixes in sheet order, so every record
// stays addressable.
func (s *Service) buildBatch(text string, seq uint64) *Batch {
	raws := csv.Parse(text)

	batch := &Batch{
		Records:   make([]record.Canonical, 0, len(raws)),
		FetchedAt: s.now(),
		Seq:       seq,
		byID:      make(map[string]int, len(raws)),
	}

	seen := make(map[string]int, len(raws))
	for _, raw := range raws {
		c := s.norm.Normalize(record.NewIndexed(raw))

		base := c.ID
		seen[base]++
		if n := seen[base]; n > 1 {
			c.ID = fmt.Sprintf("%s-%d", base, n)
		}

		batch.byID[c.ID] = len(batch.Records)
		batch.Records = append(batch.Records, c)
	}
	return batch
}

// snapshot returns the current batch; requests work against this immutable
// generation even if a refresh lands mid-flight.
func (s *Service) snapshot() (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.batch == nil {
		return nil, ErrNoBatch
	}
	return s.batch, nil
}

// Stats reports batch freshness for the health endpoint.
type Stats struct {
	Loaded    bool      `json:"loaded"`
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
}

// Stat returns current batch statistics.
func (s *Service) Stat() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.batch == nil {
		return Stats{}
	}
	return Stats{Loaded: true, Rows: len(s.batch.Records), FetchedAt: s.batch.FetchedAt}
}
