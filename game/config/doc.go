// Package config provides board configuration management for knight-paths.
//
// The config package handles:
//   - Loading board configurations from JSON or YAML files
//   - Configuration validation
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Board configurations live in the configs directory as .json, .yaml or .yml
// files. Each configuration defines the starting board size, the number of
// knight moves a path must use, the resize range (bottom_rule..upper_rule),
// the tile colour rule and the messages shown for board events.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a configuration; the extension is optional
//	boardConfig, err := manager.LoadConfig("compact")
//
//	// Get default configuration (classic, else the first valid file,
//	// else the built-in 8x8 board)
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
package config
