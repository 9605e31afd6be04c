// Command shortsctl queries a running shortsd server.
//
// Usage:
//
//	shortsctl search <query>   Search the provider, optionally download audio
//	shortsctl links <query>    Stored tracks with download links
//	shortsctl direct <query>   Search and list direct audio links
//	shortsctl top              Current trend ranking
//	shortsctl fetch <id>       Save a downloaded audio file locally
package main

import (
	"fmt"
	"os"
)

const usage = `shortsctl - client for the shortsd trend daemon

Usage:
  shortsctl <command> [flags] <args>

Commands:
  search   Search the provider for shorts, -download fetches audio on the server
  links    List stored tracks matching a query with download links
  direct   Search and list links resolving direct audio streams
  top      Show the current trend ranking
  fetch    Save the stored audio of a video id

Environment:
  SHORTSD_SERVER   Server base URL (default: http://localhost:5002)

Run 'shortsctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	var err error
	switch cmd {
	case "search":
		err = runSearch(os.Args[1:])
	case "links":
		err = runLinks(os.Args[1:])
	case "direct":
		err = runDirect(os.Args[1:])
	case "top":
		err = runTop(os.Args[1:])
	case "fetch":
		err = runFetch(os.Args[1:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "shortsctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
