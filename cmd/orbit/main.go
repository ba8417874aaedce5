// Package main provides the orbit CLI tool.
//
// Usage:
//
//	orbit [flags] <service> <command> [args]
//
// Services:
//
//	chat     - Chat inference (streaming and non-streaming)
//	files    - File upload and retrieval queries
//	threads  - Conversation thread management
//	history  - Server-side conversation history
//	health   - Server health and key validation
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.orbit/orbit/
//	Use 'orbit config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/schmitech/orbit-go/cmd/orbit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
