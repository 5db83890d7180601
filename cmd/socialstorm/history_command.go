package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"socialstorm/internal/usagestore"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var jobID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent clip selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Usage.Enabled {
				return errors.New("usage store is disabled in configuration")
			}

			store, err := usagestore.Open(cfg.Usage.DBPath)
			if err != nil {
				return fmt.Errorf("open usage store: %w", err)
			}
			defer store.Close()

			var selections []usagestore.Selection
			if jobID != "" {
				selections, err = store.ListForJob(cmd.Context(), jobID)
			} else {
				selections, err = store.ListRecent(cmd.Context(), limit)
			}
			if err != nil {
				return fmt.Errorf("list selections: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(selections) == 0 {
				fmt.Fprintln(out, "No selections recorded")
				return nil
			}
			fmt.Fprintln(out, renderSelections(selections))
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Show selections for one job only")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	return cmd
}

func renderSelections(selections []usagestore.Selection) string {
	rows := make([][]string, 0, len(selections))
	for _, sel := range selections {
		kind := "image"
		if sel.IsVideo {
			kind = "video"
		}
		rows = append(rows, []string{
			shortJobID(sel.JobID),
			strconv.Itoa(sel.SceneIndex),
			sel.Subject,
			sel.Provider,
			kind,
			fmt.Sprintf("%.0f", sel.Score),
			sel.CreatedAt.Local().Format("2006-01-02 15:04"),
			sel.Stem,
		})
	}
	return renderTable(
		[]string{"Job", "Scene", "Subject", "Provider", "Kind", "Score", "When", "Stem"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func shortJobID(id string) string {
	if idx := strings.IndexRune(id, '-'); idx > 0 {
		return id[:idx]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
