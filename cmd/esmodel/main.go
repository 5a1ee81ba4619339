// Command esmodel is a small operational CLI over the esmodel library:
// it loads model schemas from a YAML file, connects to a search engine,
// and runs queries, gets, writes and schema maintenance from the shell.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
