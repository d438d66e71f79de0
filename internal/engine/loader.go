package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

var (
	ErrNoHeader         = errors.New("csv has no header row")
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader fetches and parses the registration CSV from a path or URL.
type Loader struct {
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

func NewLoader(logger zerolog.Logger, timeout time.Duration) *Loader {
	return &Loader{
		client:  &http.Client{},
		timeout: timeout,
		logger:  logger.With().Str("component", "loader").Logger(),
	}
}

// Load never returns a nil dataset. When the source cannot be read or
// parsed, the dataset is empty and carries the error, which is also returned.
func (l *Loader) Load(ctx context.Context, source string) (*Dataset, error) {
	start := time.Now()
	l.logger.Info().Str("source", source).Msg("loading dataset")

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	content, err := l.fetch(ctx, source)
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", source, err)
		l.logger.Error().Err(err).Str("source", source).Msg("dataset load failed")
		return failedDataset(source, err), err
	}

	ds, err := Parse(source, content)
	if err != nil {
		l.logger.Error().Err(err).Str("source", source).Msg("dataset load failed")
		return ds, err
	}

	l.logger.Info().
		Str("source", source).
		Int("rows", ds.Len()).
		Int("skipped", ds.SkippedRows).
		Dur("took", time.Since(start)).
		Msg("dataset loaded")
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Parse turns CSV content into a dataset. The header row names the record
// keys; cells past the header are dropped and short rows leave the trailing
// columns absent. Rows the CSV reader rejects are skipped and counted.
func Parse(source string, content []byte) (*Dataset, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return failedDataset(source, ErrNoHeader), ErrNoHeader
	}
	if err != nil {
		err = fmt.Errorf("read csv header: %w", err)
		return failedDataset(source, err), err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	// Dimension cells repeat a lot; share one string per distinct value.
	interned := make(map[int]bool, len(Dimensions))
	for i, h := range header {
		for _, f := range Dimensions {
			if f.Column() == h {
				interned[i] = true
			}
		}
	}
	dict := make(map[string]string)

	var records []Record
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			err = fmt.Errorf("read csv row: %w", err)
			return failedDataset(source, err), err
		}

		rec := make(Record, len(header))
		for i, h := range header {
			if i >= len(row) {
				break
			}
			cell := row[i]
			if interned[i] {
				if s, ok := dict[cell]; ok {
					cell = s
				} else {
					dict[cell] = cell
				}
			}
			rec[h] = cell
		}
		records = append(records, rec)
	}

	ds := NewDataset(source, header, records)
	ds.SkippedRows = skipped
	ds.Fingerprint = xxh3.Hash(content)
	return ds, nil
}
