// Package config loads the imagestrip TOML configuration shared by the server
// and the viewer.
//
// # Discovery
//
// Load resolves the file in this order:
//
//  1. An explicitly provided path
//  2. The IMAGESTRIP_CONFIG environment variable
//  3. ~/.config/imagestrip/config.toml
//
// A missing file is not an error; the defaults apply. Empty or whitespace-only
// values also fall back to defaults, and paths support ~ expansion.
//
// # Defaults
//
//   - listen: 127.0.0.1:7490
//   - cache_dir: ~/.cache/imagestrip/assets
//   - log_dir: ~/.local/share/imagestrip/logs
//   - manifest: ~/.config/imagestrip/images.yaml
//   - transport: websocket
//   - strip: 120x120 boxes, images up to 110x110, animated, not selectable,
//     no cap on visible images, horizontal
//
// # TOML Format
//
//	listen = "127.0.0.1:7490"
//	transport = "websocket"
//
//	[strip]
//	box_width = 120
//	box_height = 120
//	image_max_width = 110
//	image_max_height = 110
//	max_visible = -1
//	alignment = "horizontal"
//	animated = true
//	selectable = false
//
// # Validation
//
// Load validates the result. An image max dimension larger than its box, an
// unknown alignment or an unknown transport fail with
// strip.ErrInvalidConfiguration.
package config
