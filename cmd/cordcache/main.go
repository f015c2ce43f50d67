package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("cordcache exited with error", "error", err)
		os.Exit(1)
	}
}
