// Command lendingd runs the library lending ledger as an HTTP service and offers small operator commands.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
