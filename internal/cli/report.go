package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"talent-track/internal/app"

	"github.com/spf13/cobra"
)

func newReportCommand(rt *runtime) *cobra.Command {
	var (
		format string
		title  string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the hiring pipeline report from the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			ctx := cmd.Context()
			c, err := app.NewContainer(ctx, rt.cfg, rt.logger, app.Options{})
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = c.Close(closeCtx)
			}()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			if format == "json" {
				r, err := c.Service.Report(ctx, title)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			body, err := c.Service.ReportCSV(ctx, title)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, body)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv or json")
	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
