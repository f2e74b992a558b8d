package main

import (
	"fmt"
	"os"

	"github.com/usevibe/vibe-cli/cmd/vibe"
)

var version = "dev"

func main() {
	if err := vibe.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
