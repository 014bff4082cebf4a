package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/imagestrip/internal/app"
)

func newViewCmd(root *rootOptions) *cobra.Command {
	opts := app.Options{}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the terminal viewer",
		Long: `Opens a new strip session on the server and draws it in the terminal.

Use the arrow keys (or h/l) to scroll, 1-9 or enter to select an image and
? for the full key list. The viewer logs to viewer.log in the log directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = root.configPath
			return app.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Server, "server", "s", "", "server address (overrides config listen)")
	cmd.Flags().StringVar(&opts.Transport, "transport", "", `cycle transport, "websocket" or "http" (overrides config)`)
	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "viewer preferences file (default ~/.config/imagestrip/prefs.toml)")
	cmd.Flags().IntVar(&opts.PollEvery, "poll", 0, "status refresh interval in seconds (default 2)")

	return cmd
}
