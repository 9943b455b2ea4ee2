package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/archive"
	"github.com/spendwatch/awardfeed/internal/awards"
	"github.com/spendwatch/awardfeed/internal/clock/system"
	"github.com/spendwatch/awardfeed/internal/config"
	"github.com/spendwatch/awardfeed/internal/export"
	"github.com/spendwatch/awardfeed/internal/id/uuid"
	"github.com/spendwatch/awardfeed/internal/pipeline"
	"github.com/spendwatch/awardfeed/internal/usaspending"
)

// newFetchCmd creates the 'fetch' subcommand: one full pipeline run with an
// optional XLSX workbook written at the end.
func newFetchCmd() *cobra.Command {
	var (
		outputPath string
		noOutput   bool
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the award pipeline once",
		Long: `Submits one export job per award-type group, waits for each to finish,
downloads and extracts the archives, filters the combined records, and
writes the result to an XLSX workbook.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}

			orch := buildOrchestrator(rt.Cfg, strict, rt.Logger)
			res, err := orch.Run(cmd.Context())
			if err != nil {
				return err
			}

			for _, g := range res.Groups {
				if g.Err != "" {
					rt.Logger.Warn("group yielded no data",
						zap.String("group", string(g.Group)),
						zap.String("error", g.Err))
				}
			}
			rt.Logger.Info("fetch complete",
				zap.String("run_id", res.RunID),
				zap.Int("rows", res.Table.Len()))

			if noOutput {
				return nil
			}
			path := outputPath
			if path == "" {
				path = rt.Cfg.Output.Path
			}
			writer := export.NewWriter(rt.Logger.Named("export"))
			return writer.WriteFile(path, res.Table, res.Started)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "XLSX output path (default from config)")
	cmd.Flags().BoolVar(&noOutput, "no-output", false, "skip writing the XLSX workbook")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort the run on the first group failure")
	return cmd
}

// buildOrchestrator assembles the pipeline from configuration.
func buildOrchestrator(cfg config.Config, strict bool, logger *zap.Logger) *pipeline.Orchestrator {
	httpClient := &http.Client{Timeout: cfg.API.Timeout()}

	client := usaspending.New(usaspending.Config{
		BaseURL:      cfg.API.BaseURL,
		DownloadPath: cfg.API.DownloadPath,
		StatusPath:   cfg.API.StatusPath,
		UserAgent:    cfg.API.UserAgent,
		Headers:      cfg.API.Headers,
		Keywords:     cfg.Filters.Keywords,
		StartDate:    cfg.Filters.StartDate,
		EndDate:      cfg.Filters.EndDate,
		Fields:       awards.RequestFields(),
		PollInitial:  cfg.API.PollInitial(),
		PollMax:      cfg.API.PollMax(),
	}, httpClient, logger.Named("usaspending"))

	// archive downloads are large; give them their own untimed client and
	// rely on the group deadline for bounding
	retriever := archive.New(&http.Client{}, logger.Named("archive"))

	return pipeline.New(
		client,
		retriever,
		system.New(),
		uuid.New(),
		pipeline.Config{
			Keywords:      cfg.Filters.Keywords,
			GroupDeadline: cfg.API.GroupDeadline(),
			StrictErrors:  strict,
		},
		logger.Named("pipeline"),
	)
}
