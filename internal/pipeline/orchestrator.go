// Package pipeline orchestrates one end-to-end run: submit and await an
// export job per award-type group, extract each archive, concatenate the
// results, and classify and filter the combined table.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/awards"
	"github.com/spendwatch/awardfeed/internal/metrics"
	"github.com/spendwatch/awardfeed/internal/tabular"
)

// AwardFetcher drives an export job to completion for one set of award
// type codes and returns the archive download URL.
type AwardFetcher interface {
	SubmitAndWait(ctx context.Context, codes []string) (string, error)
}

// ArchiveRetriever downloads a finished archive and extracts its tabular
// payload.
type ArchiveRetriever interface {
	FetchAndExtract(ctx context.Context, url string) (tabular.Table, error)
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Config controls orchestration behavior.
type Config struct {
	// Keywords re-applied client-side against record descriptions.
	Keywords []string
	// GroupDeadline bounds each group's fetch, including its poll loop.
	// Zero keeps the wait unbounded, matching the upstream job lifecycle.
	GroupDeadline time.Duration
	// StrictErrors aborts the whole run on the first group failure
	// instead of skipping to the next group. Debug aid, off by default.
	StrictErrors bool
}

// GroupOutcome records how a single award-type group fared.
type GroupOutcome struct {
	Group awards.AwardType `json:"group"`
	Rows  int              `json:"rows"`
	Err   string           `json:"error,omitempty"`
}

// Result is the output of one run.
type Result struct {
	RunID   string         `json:"run_id"`
	Started time.Time      `json:"started"`
	Groups  []GroupOutcome `json:"groups"`
	Table   tabular.Table  `json:"-"`
}

// Orchestrator wires the fetcher, retriever, and classifier into a run.
type Orchestrator struct {
	fetcher   AwardFetcher
	retriever ArchiveRetriever
	clock     awards.Clock
	idGen     IDGenerator
	cfg       Config
	logger    *zap.Logger
}

// New constructs an Orchestrator.
func New(
	fetcher AwardFetcher,
	retriever ArchiveRetriever,
	clock awards.Clock,
	idGen IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		fetcher:   fetcher,
		retriever: retriever,
		clock:     clock,
		idGen:     idGen,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one full pipeline pass. Group fetch failures are
// recoverable: they are logged, recorded in the outcome, and the run moves
// on to the next group (unless StrictErrors is set). Groups run strictly
// one after another; each poll loop completes before the next submission.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	runID, err := o.idGen.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("generate run id: %w", err)
	}
	now := o.clock.Now()
	logger := o.logger.With(zap.String("run_id", runID))
	logger.Info("run started", zap.Time("evaluated_at", now))

	result := Result{RunID: runID, Started: now}
	var groupTables []tabular.Table

	for _, group := range awards.Groups() {
		tab, err := o.fetchGroup(ctx, group)
		outcome := GroupOutcome{Group: group.Type, Rows: tab.Len()}

		switch {
		case err != nil:
			outcome.Err = err.Error()
			metrics.ObserveExportJob(string(group.Type), "failed")
			logger.Error("group fetch failed",
				zap.String("group", string(group.Type)),
				zap.Error(err))
			if o.cfg.StrictErrors {
				result.Groups = append(result.Groups, outcome)
				return result, fmt.Errorf("fetch group %s: %w", group.Type, err)
			}
		case tab.IsEmpty():
			metrics.ObserveExportJob(string(group.Type), "empty")
			logger.Warn("group returned no records", zap.String("group", string(group.Type)))
		default:
			metrics.ObserveExportJob(string(group.Type), "finished")
			metrics.ObserveRecords(string(group.Type), "fetched", tab.Len())
			logger.Info("group fetched",
				zap.String("group", string(group.Type)),
				zap.Int("rows", tab.Len()))
			groupTables = append(groupTables, tab)
		}
		result.Groups = append(result.Groups, outcome)
	}

	combined := tabular.Concat(groupTables...)
	combined = combined.WithColumn(awards.ColRetrievedAt, func(tabular.Row) string {
		return now.Format(time.RFC3339)
	})
	combined = combined.Select(awards.OutputColumns()...)

	filtered := awards.ClassifyAndFilter(combined, o.cfg.Keywords, now)
	metrics.ObserveRecords("all", "kept", filtered.Len())
	logger.Info("run finished",
		zap.Int("fetched", combined.Len()),
		zap.Int("kept", filtered.Len()))

	result.Table = filtered
	return result, nil
}

// fetchGroup runs the submit/poll/download sequence for one group under the
// optional per-group deadline.
func (o *Orchestrator) fetchGroup(ctx context.Context, group awards.Group) (tabular.Table, error) {
	if o.cfg.GroupDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.GroupDeadline)
		defer cancel()
	}

	waitStart := time.Now()
	url, err := o.fetcher.SubmitAndWait(ctx, group.Codes)
	if err != nil {
		return tabular.Table{}, err
	}
	metrics.ObserveJobWait(string(group.Type), time.Since(waitStart))

	return o.retriever.FetchAndExtract(ctx, url)
}
