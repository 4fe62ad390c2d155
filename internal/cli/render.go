package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		flags  renderFlags
		data   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "render [data]",
		Short: "Render a single QR code to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if data == "" && len(args) == 1 {
				data = args[0]
			}
			req, err := flags.request(cmd, a.cfg)
			if err != nil {
				return err
			}
			req.Payload = data

			p, err := a.pipeline()
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				a.log.Warn(w)
			}

			path := output
			if path == "" {
				path = "qrcode." + res.Extension
			}
			if path == "-" {
				_, err = cmd.OutOrStdout().Write(res.Bytes)
				return err
			}
			if err := os.WriteFile(path, res.Bytes, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			note := ""
			if res.Verified {
				note = ", verified"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes%s)\n", path, len(res.Bytes), note)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "content to encode")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default qrcode.<format>)`)
	flags.register(cmd)
	return cmd
}
