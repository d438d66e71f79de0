// Package export streams registration records in the Arrow IPC format.
package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"evdash/internal/engine"
)

// ContentType is the media type of an Arrow IPC stream.
const ContentType = "application/vnd.apache.arrow.stream"

// batchSize bounds the rows held in one record batch.
const batchSize = 8192

// Schema has one nullable string field per column.
func Schema(columns []string) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		fields[i] = arrow.Field{Name: col, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteIPC writes records as an Arrow stream. Columns a record does not
// carry become nulls, present empty strings stay empty strings.
func WriteIPC(w io.Writer, columns []string, records []engine.Record) error {
	mem := memory.NewGoAllocator()
	schema := Schema(columns)

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		for _, r := range records[start:end] {
			for i, col := range columns {
				fb := b.Field(i).(*array.StringBuilder)
				if v, ok := r[col]; ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		}

		rec := b.NewRecord()
		err := wr.Write(rec)
		rec.Release()
		if err != nil {
			wr.Close()
			return fmt.Errorf("failed to write arrow batch: %w", err)
		}
	}

	if err := wr.Close(); err != nil {
		return fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return nil
}
