// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

func TestParseArgsDefaultsToTUI(t *testing.T) {
	cmd, args := ParseArgs(nil)
	if cmd != CmdTUI {
		t.Errorf("expected CmdTUI, got %v", cmd)
	}
	if args.Quiet || args.Model != "" {
		t.Errorf("expected zero args, got %+v", args)
	}
}

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"tui explicit", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "what is bail?"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"sessions", []string{"sessions", "list"}, CmdSessions},
		{"session alias", []string{"session"}, CmdSessions},
		{"cache", []string{"cache", "clear"}, CmdCache},
		{"config", []string{"config"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"bare question is ask", []string{"what is Section 420?"}, CmdAsk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := ParseArgs(tt.argv)
			if cmd != tt.want {
				t.Errorf("ParseArgs(%v) = %v, want %v", tt.argv, cmd, tt.want)
			}
		})
	}
}

func TestParseArgsGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--url", "http://api.example.com", "-q", "ask", "hello"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if args.BaseURL != "http://api.example.com" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
	if !args.Quiet {
		t.Error("expected Quiet")
	}
	if args.Query != "hello" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgsEqualsForm(t *testing.T) {
	_, args := ParseArgs([]string{"--url=http://x:9", "ask", "--model=gpt-4o-mini", "--strategy=fusion", "q"})
	if args.BaseURL != "http://x:9" {
		t.Errorf("BaseURL = %q", args.BaseURL)
	}
	if args.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", args.Model)
	}
	if args.Strategy != "fusion" {
		t.Errorf("Strategy = %q", args.Strategy)
	}
}

func TestParseAskFlags(t *testing.T) {
	_, args := ParseArgs([]string{"ask", "-m", "gpt-4o", "--sources", "--meta", "--raw", "what", "is", "bail?"})
	if args.Model != "gpt-4o" {
		t.Errorf("Model = %q", args.Model)
	}
	if !args.Sources || !args.Meta || !args.Raw {
		t.Errorf("flags not set: %+v", args)
	}
	if args.Query != "what is bail?" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseChatName(t *testing.T) {
	_, args := ParseArgs([]string{"chat", "--name", "Property dispute"})
	if args.Name != "Property dispute" {
		t.Errorf("Name = %q", args.Name)
	}
}

func TestParseSessionsSubcommand(t *testing.T) {
	cmd, args := ParseArgs([]string{"sessions", "delete", "3"})
	if cmd != CmdSessions {
		t.Fatalf("expected CmdSessions, got %v", cmd)
	}
	if args.Subcommand != "delete" {
		t.Errorf("Subcommand = %q", args.Subcommand)
	}
	if len(args.Rest) != 1 || args.Rest[0] != "3" {
		t.Errorf("Rest = %v", args.Rest)
	}
}

func TestParseConfigArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		sub  string
		key  string
		val  string
	}{
		{"bare config", []string{"config"}, "show", "", ""},
		{"get", []string{"config", "get", "chat.model"}, "get", "chat.model", ""},
		{"set", []string{"config", "set", "chat.strategy", "fusion"}, "set", "chat.strategy", "fusion"},
		{"set multiword", []string{"config", "set", "ui.theme", "dark"}, "set", "ui.theme", "dark"},
		{"path", []string{"config", "path"}, "path", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, args := ParseArgs(tt.argv)
			if args.Subcommand != tt.sub {
				t.Errorf("Subcommand = %q, want %q", args.Subcommand, tt.sub)
			}
			if args.ConfigKey != tt.key {
				t.Errorf("ConfigKey = %q, want %q", args.ConfigKey, tt.key)
			}
			if args.ConfigVal != tt.val {
				t.Errorf("ConfigVal = %q, want %q", args.ConfigVal, tt.val)
			}
		})
	}
}

func TestValidStrategy(t *testing.T) {
	for _, s := range []string{"simple", "fusion", "hyde", "FUSION"} {
		if !validStrategy(s) {
			t.Errorf("validStrategy(%q) = false", s)
		}
	}
	if validStrategy("alchemy") {
		t.Error("validStrategy(alchemy) = true")
	}
}
