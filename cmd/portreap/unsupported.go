//go:build !linux && !darwin

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(
		os.Stderr,
		"portreap is only supported on Linux and macOS.\n\nSocket ownership and unix signal semantics are platform specific; there is no Windows or BSD port yet.",
	)
	os.Exit(1)
}
