// Package cli provides shared plumbing for the orbit command-line tool.
//
// This package includes:
//   - Configuration management (named server contexts, kubectl-style)
//   - Output formatting (YAML, JSON, raw, optional jq filter)
//   - Request file loading (YAML/JSON)
//   - Terminal styling for the chat REPL
//
// Configuration is stored under ~/.orbit/, one context per server. The
// current context supplies the base URL, API key and session ID unless
// flags override them.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("orbit")
//
//	ctx, err := cfg.GetCurrentContext()
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Filter: ".response",
//	})
package cli
