package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"worksim/internal/config"
	"worksim/internal/content"
	"worksim/internal/domain"
	"worksim/internal/generate"
	"worksim/internal/kernel"
	"worksim/internal/logger"
	"worksim/internal/provenance"
	"worksim/internal/repo"
	"worksim/internal/validate"
)

// Sink is where generated tables go.
type Sink interface {
	Append(ctx context.Context, table string, columns []string, rows [][]any) (repo.AppendResult, error)
}

var ErrNoSink = errors.New("no sink configured")

// primaryMaxFailures switches the text backend off after this many misses in a row.
const primaryMaxFailures = 5

type Options struct {
	// DryRun generates everything but appends nothing.
	DryRun bool
	// Verify runs the structural checks over the finished dataset.
	Verify bool
}

type TableSummary struct {
	Table     string `json:"table"`
	Generated int    `json:"generated"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

type Summary struct {
	BatchID string           `json:"batch_id,omitempty"`
	Tables  []TableSummary   `json:"tables"`
	Report  *validate.Report `json:"report,omitempty"`
	Elapsed time.Duration    `json:"elapsed"`
}

type Engine struct {
	Sink    Sink
	Config  *config.Config
	// Primary is an optional text backend tried before the templates.
	Primary content.Synthesizer
	Log     zerolog.Logger
	Now     func() time.Time
}

func New(sink Sink, cfg *config.Config) Engine {
	return Engine{
		Sink:   sink,
		Config: cfg,
		Log:    logger.Logger,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Run generates the dataset phase by phase, appending each phase's tables
// before the next phase starts.
func (e Engine) Run(ctx context.Context, opts Options) (*domain.Dataset, Summary, error) {
	var sum Summary
	if e.Config == nil {
		return nil, sum, fmt.Errorf("%w: missing config", config.ErrInvalid)
	}
	if err := e.Config.Validate(); err != nil {
		return nil, sum, err
	}
	if e.Sink == nil && !opts.DryRun {
		return nil, sum, ErrNoSink
	}
	started := e.now()
	k := kernel.New(e.Config.Seed, e.Config.Temporal)
	var text content.Synthesizer = content.Templates{K: k}
	if e.Primary != nil {
		text = &content.Resilient{
			Primary:     e.Primary,
			Fallback:    content.Templates{K: k},
			Log:         e.Log,
			MaxFailures: primaryMaxFailures,
		}
	}
	env := generate.NewEnv(e.Config, k, text)

	var prov provenance.Writer
	if !opts.DryRun {
		prov = provenance.Writer{Sink: e.Sink, BatchID: provenance.NewBatchID(), Now: e.now}
		sum.BatchID = prov.BatchID
	}
	e.Log.Info().Int64("seed", e.Config.Seed).Str("batch", sum.BatchID).Bool("dry_run", opts.DryRun).Msg("generation started")

	d := &domain.Dataset{}
	for _, phase := range generate.Phases() {
		if err := ctx.Err(); err != nil {
			return nil, sum, err
		}
		if err := phase.Run(ctx, env, d); err != nil {
			return nil, sum, fmt.Errorf("phase %s: %w", phase.Name, err)
		}
		for _, table := range phase.Tables {
			ts, err := e.store(ctx, prov, d, table, opts.DryRun)
			if err != nil {
				return nil, sum, err
			}
			sum.Tables = append(sum.Tables, ts)
		}
	}
	sum.Elapsed = e.now().Sub(started)

	if opts.Verify {
		report := validate.Dataset(d, e.Config.NowTime())
		sum.Report = &report
		if err := report.Err(); err != nil {
			e.Log.Error().Int("issues", len(report.Issues)).Msg("dataset failed verification")
			return d, sum, err
		}
		e.Log.Info().Int("checked", report.Checked).Msg("dataset verified")
	}
	e.Log.Info().Dur("elapsed", sum.Elapsed).Msg("generation finished")
	return d, sum, nil
}

func (e Engine) store(ctx context.Context, prov provenance.Writer, d *domain.Dataset, table string, dryRun bool) (TableSummary, error) {
	ts := TableSummary{Table: table}
	records, ok := d.Records(table)
	if !ok {
		return ts, fmt.Errorf("%w: %s", repo.ErrUnknownTable, table)
	}
	cols, rows, err := repo.Encode(records)
	if err != nil {
		return ts, err
	}
	ts.Generated = len(rows)
	if dryRun {
		e.Log.Info().Str("table", table).Int("rows", ts.Generated).Msg("generated")
		return ts, nil
	}
	res, err := e.Sink.Append(ctx, table, cols, rows)
	if err != nil {
		return ts, fmt.Errorf("append %s: %w", table, err)
	}
	ts.Inserted, ts.Skipped, ts.Failed = res.Inserted, res.Skipped, res.Failed
	if res.Failed > 0 {
		e.Log.Warn().Str("table", table).Int("failed", res.Failed).Msg("records rejected by the store")
	}
	if res.Skipped > 0 {
		e.Log.Debug().Str("table", table).Int("skipped", res.Skipped).Msg("records already stored")
	}
	if err := prov.Record(ctx, table, ts.Generated); err != nil {
		return ts, err
	}
	e.Log.Info().Str("table", table).Int("rows", ts.Generated).Int("inserted", ts.Inserted).Msg("stored")
	return ts, nil
}
