// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared config and client wiring for CLI commands.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/nyaya-tui/internal/api"
	"github.com/jeranaias/nyaya-tui/internal/config"
)

// LoadConfig loads the user config and applies CLI flag overrides on
// top of it. Flags win over the file and the environment.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if args.BaseURL != "" {
		cfg.Server.BaseURL = args.BaseURL
	}
	if args.Model != "" {
		cfg.Chat.Model = args.Model
	}
	if args.Strategy != "" {
		if !validStrategy(args.Strategy) {
			return nil, fmt.Errorf("unknown strategy %q, must be one of: %s",
				args.Strategy, strings.Join(config.ValidStrategies, ", "))
		}
		cfg.Chat.Strategy = strings.ToLower(args.Strategy)
	}

	return cfg, nil
}

// NewAPIClient builds an api.Client from the resolved config.
func NewAPIClient(cfg *config.Config) *api.Client {
	clientCfg := api.DefaultClientConfig()
	if cfg.Server.BaseURL != "" {
		clientCfg.BaseURL = cfg.Server.BaseURL
	}
	if cfg.Server.TimeoutSecs > 0 {
		clientCfg.Timeout = time.Duration(cfg.Server.TimeoutSecs) * time.Second
	}
	return api.NewClientWithConfig(clientCfg)
}

// queryRequest builds a QueryRequest from config defaults.
func queryRequest(cfg *config.Config, query, conversationID string, stream bool) api.QueryRequest {
	req := api.QueryRequest{
		Query:          strings.TrimSpace(query),
		ModelName:      cfg.Chat.Model,
		Strategy:       cfg.Chat.Strategy,
		Temperature:    cfg.Chat.Temperature,
		MaxTokens:      cfg.Chat.MaxTokens,
		Stream:         stream,
		ConversationID: conversationID,
		IncludeHistory: true,
	}
	req.ApplyDefaults()
	return req
}

func validStrategy(s string) bool {
	for _, v := range config.ValidStrategies {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
