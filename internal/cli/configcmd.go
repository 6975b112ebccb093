// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - Config inspection and editing via dot notation.
package cli

import (
	"fmt"

	"github.com/jeranaias/nyaya-tui/internal/config"
)

// HandleConfig runs the config command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Print(cfg.String())
		return nil

	case "get":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: nyaya config get <key>\nKeys: %v", config.GetAllKeys())
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		val, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return fmt.Errorf("usage: nyaya config set <key> <value>\nKeys: %v", config.GetAllKeys())
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Println(infoStyle.Render(fmt.Sprintf("Set %s = %s", args.ConfigKey, args.ConfigVal)))
		return nil

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "keys":
		for _, k := range config.GetAllKeys() {
			fmt.Println(k)
		}
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q, expected show, get, set, keys, or path", args.Subcommand)
	}
}
