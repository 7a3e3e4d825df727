// Command lcd loads, checks and dumps JSON or YAML documents against structs
// declared in a schema file.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "lcd:", err)
		}
		os.Exit(1)
	}
}
