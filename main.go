package main

import (
	"flag"
	"fmt"
	"os"

	"sketchpad/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default ~/.config/sketchpad/config.yaml)")
	flag.Parse()

	if err := app.ServeMCP(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
