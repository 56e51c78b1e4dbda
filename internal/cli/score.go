package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"talent-track/internal/domain/selection"
	"talent-track/internal/ingest"

	"github.com/spf13/cobra"
)

type scoredJob struct {
	JobID     string             `json:"job_id"`
	Title     string             `json:"title"`
	Threshold int                `json:"threshold"`
	Ranked    []selection.Ranked `json:"ranked"`
	Skipped   []string           `json:"skipped,omitempty"`
}

func newScoreCommand(rt *runtime) *cobra.Command {
	var (
		threshold int
		format    string
	)
	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Rank the applications of a fixture file without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = rt.cfg.Selection.Threshold
			}
			if !selection.ThresholdInRange(threshold) {
				return fmt.Errorf("threshold %d not in [%d,%d]", threshold, selection.MinThreshold, selection.MaxThreshold)
			}

			batches, err := ingest.LoadFile(args[0])
			if err != nil {
				return err
			}

			out := make([]scoredJob, 0, len(batches))
			for _, b := range batches {
				out = append(out, scoredJob{
					JobID:     b.Job.ID.String(),
					Title:     b.Job.Title,
					Threshold: threshold,
					Ranked:    selection.AutoSelect(b.Applications, b.Job.Requirement, threshold),
					Skipped:   b.Skipped,
				})
			}

			switch format {
			case "table":
				return writeScoreTable(cmd, out)
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			default:
				return fmt.Errorf("unknown format %q (want table or json)", format)
			}
		},
	}
	cmd.Flags().IntVarP(&threshold, "threshold", "t", selection.DefaultThreshold, "auto-selection threshold (50-100)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	return cmd
}

func writeScoreTable(cmd *cobra.Command, jobs []scoredJob) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for i, j := range jobs {
		if i > 0 {
			printf(w, "\n")
		}
		printf(w, "%s (threshold %d)\n", j.Title, j.Threshold)
		printf(w, "RANK\tNAME\tEMAIL\tSCORE\tSELECTED\tRECOMMENDATION\n")
		for k, r := range j.Ranked {
			printf(w, "%d\t%s\t%s\t%d\t%t\t%s\n",
				k+1, r.Application.Name, r.Application.Email, r.AIScore, r.AutoSelected, r.Recommendation)
		}
		for _, s := range j.Skipped {
			printf(w, "skipped: %s\n", s)
		}
	}
	return w.Flush()
}
