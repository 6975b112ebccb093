// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cache.go - Server cache management.
package cli

import (
	"context"
	"fmt"
	"time"
)

// HandleCache runs the cache command.
func HandleCache(args Args) error {
	switch args.Subcommand {
	case "clear":
		return clearCache(args)
	case "":
		return fmt.Errorf("usage: nyaya cache clear")
	default:
		return fmt.Errorf("unknown cache subcommand %q, expected clear", args.Subcommand)
	}
}

func clearCache(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	client := NewAPIClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resp, err := client.ClearCache(ctx)
	if err != nil {
		return describeQueryError(err)
	}

	msg := resp.Message
	if msg == "" {
		msg = "Server cache cleared."
	}
	fmt.Println(infoStyle.Render(msg))
	return nil
}
