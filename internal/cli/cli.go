// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for nyaya.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdCache
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	BaseURL string
	Model   string

	// Command-specific
	Query      string
	Name       string
	Strategy   string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Sources    bool
	Meta       bool
	Raw        bool

	// Raw args (remaining after flag parsing)
	Rest []string
}

const usageText = `nyaya - terminal client for the NyayaGPT legal assistant

Nyaya talks to a NyayaGPT service and renders answers with citations
to Indian legal sources.

Usage:
  nyaya                       Start the TUI (default)
  nyaya ask "question"        Ask a single question and exit
  nyaya chat                  Interactive REPL chat
  nyaya sessions [subcommand] Saved conversation management
  nyaya cache clear           Clear the server response cache
  nyaya config [get|set|path] Configuration
  nyaya version               Show version
  nyaya help                  Show this help

Ask:
  nyaya ask "What is Section 420 IPC?"
    -m, --model MODEL         Model to use (default from config)
    -s, --strategy STRATEGY   Retrieval strategy: simple, fusion, hyde
    --sources                 Print context sources after the answer
    --meta                    Print model/strategy/timing footer
    --raw                     Plain text output, no markdown rendering

Chat:
  nyaya chat
    -m, --model MODEL         Model to use
    --name NAME               Session name for a new conversation

Sessions:
  nyaya sessions list         List saved conversations
  nyaya sessions delete <n>   Delete conversation n (from list)
  nyaya sessions clear        Forget all saved conversations

Config:
  nyaya config                Show current configuration
  nyaya config get <key>      Print one value (e.g. chat.model)
  nyaya config set <key> <v>  Set and save a value
  nyaya config path           Print the config file path

Global flags:
  --url URL                   Service base URL (or NYAYA_URL)
  -q, --quiet                 Suppress non-essential output
  -v, --verbose               Verbose output

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("nyaya version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument list. Split out of Parse for tests.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	// No command defaults to the TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Rest = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "sessions", "session":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
			parsedArgs.Rest = remaining[1:]
		}
		return CmdSessions, parsedArgs

	case "cache":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdCache, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		// Unknown word is treated as an ask query, which makes
		// `nyaya "what is bail?"` work.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--url":
			if i+1 < len(args) {
				i++
				parsedArgs.BaseURL = args[i]
			}
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--url=") {
				parsedArgs.BaseURL = strings.TrimPrefix(arg, "--url=")
			} else if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "-s", "--strategy":
			if i+1 < len(remaining) {
				i++
				args.Strategy = remaining[i]
			}
		case "--sources":
			args.Sources = true
		case "--meta":
			args.Meta = true
		case "--raw":
			args.Raw = true
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else if strings.HasPrefix(arg, "--strategy=") {
				args.Strategy = strings.TrimPrefix(arg, "--strategy=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "--name":
			if i+1 < len(remaining) {
				i++
				args.Name = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else if strings.HasPrefix(arg, "--name=") {
				args.Name = strings.TrimPrefix(arg, "--name=")
			}
		}
	}
}

// parseConfigArgs parses config command arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}

	args.Subcommand = strings.ToLower(remaining[0])
	rest := remaining[1:]

	switch args.Subcommand {
	case "get":
		if len(rest) > 0 {
			args.ConfigKey = rest[0]
		}
	case "set":
		if len(rest) > 0 {
			args.ConfigKey = rest[0]
		}
		if len(rest) > 1 {
			args.ConfigVal = strings.Join(rest[1:], " ")
		}
	}
}
