// objectctx imports market catalog payloads into a DynamoDB compatible store
// and inspects the stored entities.
//
// # Installation
//
//	go install github.com/acksell/objectctx/cmd/objectctx@latest
//
// # Commands
//
//	objectctx import   Decode JSON payloads and save the entities
//	objectctx get      Print one entity
//	objectctx list     Print all entities of a kind
//	objectctx whoami   Show the AWS identity used by the dynamodb backend
//
// # Quick Start
//
//	objectctx import -kind product products.json
//	objectctx get -kind product -id 42
//	objectctx list -kind city
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	// Remove the subcommand from args so flag parsing works
	os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

	var err error
	switch cmd {
	case "import":
		err = runImport()
	case "get":
		err = runGet()
	case "list", "ls":
		err = runList()
	case "whoami":
		err = runWhoami()
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("objectctx version %s\n", version)
		return
	default:
		fmt.Fprintf(os.Stderr, "objectctx: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "objectctx %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objectctx - market catalog store

Usage:
  objectctx <command> [flags]

Commands:
  import  Decode JSON payloads and save the entities
  get     Print one entity
  list    Print all entities of a kind
  whoami  Show the AWS identity used by the dynamodb backend

Kinds:
  city, country, product, group

Examples:
  # Import an API response, as {"items": [...]}, an array or a single object:
  objectctx import -kind product products.json

  # Print a stored product with its photos and price:
  objectctx get -kind product -id 42

  # List cities, at most 10:
  objectctx list -kind city -limit 10

Configuration (optional):
  Create objectctx.yaml in the working directory or a parent:

    backend: badger       # badger, memory or dynamodb
    dataDir: ./data       # database directory for badger
    tablePrefix: dev-     # prepended to every table name
    region: eu-north-1    # dynamodb only
    endpoint: ""          # dynamodb only, e.g. http://localhost:8000
    strictMatching: false # fail when several entities share an id
    verbose: false

Run 'objectctx <command> --help' for more information on a command.`)
}
