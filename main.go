// ABOUTME: Entry point for the slidesounds command
// ABOUTME: Hands control to the cobra command tree
package main

import (
	"os"

	"github.com/slidesounds/slidesounds-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
