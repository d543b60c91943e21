// Package provenance records which strategy produced each table of a run.
package provenance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"worksim/internal/catalog"
	"worksim/internal/domain"
	"worksim/internal/repo"
)

// Appender is the slice of the storage sink the writer needs.
type Appender interface {
	Append(ctx context.Context, table string, columns []string, rows [][]any) (repo.AppendResult, error)
}

// Writer appends one provenance row per generated table, all sharing BatchID.
type Writer struct {
	Sink    Appender
	BatchID string
	Now     func() time.Time
}

// NewBatchID returns a short random run identifier. It comes from the wall
// clock's entropy, not the seeded kernel, so reruns get distinct batches.
func NewBatchID() string {
	return uuid.NewString()[:8]
}

func New(sink Appender) Writer {
	return Writer{Sink: sink, BatchID: NewBatchID(), Now: time.Now}
}

// Entry builds the provenance record for table.
func (w Writer) Entry(table string, rows int) domain.Provenance {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	strategy, ok := catalog.Strategies[table]
	if !ok {
		strategy = "Synthetic"
	}
	return domain.Provenance{
		BatchID:        w.BatchID,
		EntityType:     table,
		SourceStrategy: strategy,
		RowCount:       rows,
		Timestamp:      now().UTC().Truncate(time.Second),
	}
}

// Record appends the provenance row for table.
func (w Writer) Record(ctx context.Context, table string, rows int) error {
	cols, vals, err := repo.Encode([]domain.Provenance{w.Entry(table, rows)})
	if err != nil {
		return err
	}
	if _, err := w.Sink.Append(ctx, domain.ProvenanceTable, cols, vals); err != nil {
		return fmt.Errorf("record provenance for %s: %w", table, err)
	}
	return nil
}
