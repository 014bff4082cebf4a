package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/imagestrip/internal/client"
	"github.com/five82/imagestrip/internal/config"
	"github.com/five82/imagestrip/internal/manifest"
	"github.com/five82/imagestrip/internal/strip"
)

const registerTimeout = 30 * time.Second

func newAddCmd(root *rootOptions) *cobra.Command {
	var (
		session string
		server  string
	)

	cmd := &cobra.Command{
		Use:   "add <file|url>...",
		Short: "Add images to the manifest or a live session",
		Long: `Adds images to the manifest preloaded into every new session.

With --session the images are registered into that running session instead;
the server scales them immediately and the viewer picks them up on its next
cycle. Locations starting with http:// or https:// are fetched as URLs,
everything else is read as a local file.`,
		Example: `  imagestrip add ~/Pictures/a.jpg https://example.com/b.png
  imagestrip add --session 6f1c... ./c.webp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			resources := make([]strip.Resource, 0, len(args))
			for _, arg := range args {
				res, err := resourceFor(arg)
				if err != nil {
					return err
				}
				resources = append(resources, res)
			}

			if session == "" {
				return addToManifest(cmd, cfg.Manifest, resources)
			}
			addr := cfg.Listen
			if server != "" {
				addr = server
			}
			return addToSession(cmd, addr, session, resources)
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "register into this live session instead of the manifest")
	cmd.Flags().StringVarP(&server, "server", "s", "", "server address (overrides config listen)")

	return cmd
}

// resourceFor classifies a command-line location.
func resourceFor(arg string) (strip.Resource, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return strip.Resource{}, fmt.Errorf("%w: empty location", strip.ErrUnsupportedResourceKind)
	}
	lower := strings.ToLower(arg)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return strip.URLResource(arg), nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return strip.Resource{}, fmt.Errorf("resolve %s: %w", arg, err)
	}
	return strip.FileResource(abs), nil
}

func addToManifest(cmd *cobra.Command, path string, resources []strip.Resource) error {
	existing, err := manifest.Load(path)
	if err != nil {
		return err
	}
	if err := manifest.Save(path, append(existing, resources...)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d image(s) to %s (%d total)\n", len(resources), path, len(existing)+len(resources))
	return nil
}

func addToSession(cmd *cobra.Command, addr, session string, resources []strip.Resource) error {
	c, err := client.NewClient(addr)
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	for _, res := range resources {
		ctx, cancel := context.WithTimeout(cmd.Context(), registerTimeout)
		img, err := c.Register(ctx, session, res.Kind.String(), res.Location)
		cancel()
		if err != nil {
			return fmt.Errorf("register %s: %w", res.Location, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "#%d %s (%dx%d)\n", img.Index, res.Location, img.Width, img.Height)
	}
	return nil
}
