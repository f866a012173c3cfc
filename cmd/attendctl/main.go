// Command attendctl inspects the attendance log from a terminal: it lists the
// roster, prints report windows and exports them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
