// Command resultctl works on result sheets from the command line: it prints
// the derived views of a sheet, looks up a single student and exports views
// to CSV or XLSX without running the server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
