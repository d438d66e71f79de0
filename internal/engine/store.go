package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/sync/singleflight"
)

// Record is one registration row keyed by CSV header. A missing key means
// the column was absent for that row.
type Record map[string]string

// Dataset is the immutable result of one load. Filtering never edits it.
type Dataset struct {
	Source      string
	Columns     []string
	Records     []Record
	SkippedRows int
	Fingerprint uint64 // xxh3 of the raw file
	LoadedAt    time.Time
	Err         error

	vocabulary []string // distinct Make and Model values, for suggestions
}

// State describes where a dataset is in its lifecycle.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// NewDataset builds a dataset over already parsed records.
func NewDataset(source string, columns []string, records []Record) *Dataset {
	ds := &Dataset{
		Source:   source,
		Columns:  columns,
		Records:  records,
		LoadedAt: time.Now(),
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		for _, col := range [...]string{ColMake, ColModel} {
			v := r[col]
			if v == "" {
				continue
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				ds.vocabulary = append(ds.vocabulary, v)
			}
		}
	}
	return ds
}

// failedDataset is the empty dataset published when a load goes wrong.
func failedDataset(source string, err error) *Dataset {
	return &Dataset{Source: source, LoadedAt: time.Now(), Err: err}
}

// Len is the number of records; nil datasets are empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

func (d *Dataset) State() State {
	switch {
	case d == nil || (d.LoadedAt.IsZero() && d.Err == nil):
		return StateLoading
	case d.Err != nil:
		return StateFailed
	default:
		return StateReady
	}
}

// --- STORE ---

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithObserver registers a callback run after every publish.
func WithObserver(fn func(*Dataset)) StoreOption {
	return func(s *Store) {
		s.observers = append(s.observers, fn)
	}
}

// Store holds the dataset currently served. Readers take a snapshot and
// work on it; a new load replaces the whole dataset in one swap.
type Store struct {
	current   atomic.Pointer[Dataset]
	group     singleflight.Group
	observers []func(*Dataset)
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&Dataset{})
	return s
}

// Snapshot returns the dataset to compute against. Before the first load
// completes this is an empty dataset in StateLoading.
func (s *Store) Snapshot() *Dataset {
	return s.current.Load()
}

func (s *Store) Publish(ds *Dataset) {
	s.current.Store(ds)
	for _, fn := range s.observers {
		fn(ds)
	}
}

// Load runs l against source and publishes whatever comes back, including
// the empty dataset of a failed load.
func (s *Store) Load(ctx context.Context, l *Loader, source string) (*Dataset, error) {
	ds, err := l.Load(ctx, source)
	s.Publish(ds)
	return ds, err
}

// Reload is Load with concurrent calls for the same source collapsed into one.
func (s *Store) Reload(ctx context.Context, l *Loader, source string) (*Dataset, error) {
	v, err, _ := s.group.Do(source, func() (any, error) {
		return s.Load(ctx, l, source)
	})
	ds, _ := v.(*Dataset)
	return ds, err
}

// LoadAsync starts the initial load in the background. The returned channel
// closes once a dataset has been published. A panicking loader publishes a
// failed dataset instead of taking the process down.
func (s *Store) LoadAsync(ctx context.Context, l *Loader, source string) <-chan struct{} {
	done := make(chan struct{})

	var wg conc.WaitGroup
	wg.Go(func() {
		_, _ = s.Load(ctx, l, source)
	})

	go func() {
		defer close(done)
		if rec := wg.WaitAndRecover(); rec != nil {
			err := fmt.Errorf("dataset load panicked: %w", rec.AsError())
			l.logger.Error().Err(err).Str("source", source).Msg("dataset load aborted")
			s.Publish(failedDataset(source, err))
		}
	}()
	return done
}
