package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrbadge/internal/batch"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		flags   renderFlags
		csvPath string
		output  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render one QR code per CSV row into a ZIP archive",
		Long: `Render one QR code per CSV row into a ZIP archive.

The CSV needs a "data" column and may carry "filename" and "label" columns.
Rows that fail are written as <name>.error.txt instead of aborting the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// #nosec G304 -- csv path is supplied by the user
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open csv: %w", err)
			}
			rows, err := batch.ParseCSV(f)
			_ = f.Close()
			if err != nil {
				return err
			}

			template, err := flags.request(cmd, a.cfg)
			if err != nil {
				return err
			}
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = a.cfg.Batch.Workers
			}
			entries := batch.NewRunner(p, workers, a.log).Run(cmd.Context(), rows, template)

			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := batch.WriteZip(out, entries); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}

			failed := 0
			for _, e := range entries {
				if e.Err != nil {
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d rows, %d failed\n", output, len(entries), failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "input CSV file")
	cmd.Flags().StringVarP(&output, "output", "o", "qr_batch.zip", "output ZIP archive")
	cmd.Flags().IntVar(&workers, "workers", 0, "rows rendered in parallel (default from config)")
	_ = cmd.MarkFlagRequired("csv")
	flags.register(cmd)
	return cmd
}
