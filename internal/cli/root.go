// Package cli defines the imagestrip command tree.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

// NewRootCmd builds the imagestrip command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "imagestrip",
		Short: "Scrollable image strip server and terminal viewer",
		Long: `imagestrip serves a horizontally or vertically scrolling strip of images.

The server scales registered images, keeps one strip per viewer session and
sends each viewer only the images it has not seen yet. The terminal viewer
draws the strip, animates scrolling and reports selections back.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/imagestrip/config.toml)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newViewCmd(opts))
	cmd.AddCommand(newAddCmd(opts))

	return cmd
}
