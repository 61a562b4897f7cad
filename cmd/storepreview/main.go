// Package main provides the storepreview CLI.
//
// storepreview captures a storefront page as a static preview: it fetches
// the page, strips trackers and chat widgets, makes URLs absolute, injects a
// small shim that keeps the search and cart drawers working, and writes
// public/previews/<name>.html.
//
// Usage:
//
//	storepreview <url> <name>
//	storepreview batch
//	storepreview history [name]
//
// See --help for all available options.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}
	Execute()
}
