package main

import (
	"os"

	"field-scheduler/internal/logger"
)

func main() {
	if err := Execute(); err != nil {
		logger.New("main").Errorf("fatal: %v", err)
		os.Exit(1)
	}
}
