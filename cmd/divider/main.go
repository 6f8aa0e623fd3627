// cmd/divider/main.go
//
// Entry point for the divider CLI. Without a subcommand it opens the
// interactive roster -> settings -> results UI in the current directory;
// `split` and `roles` do the same work non-interactively.

package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
