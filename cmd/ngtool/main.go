// Command ngtool inspects, validates and converts node graph documents.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Bad.Sprint("Error: ")+err.Error())
		os.Exit(1)
	}
}
