package main

import (
	"os"

	"github.com/harish876/ResLens-Middleware/middleware"
)

func main() {
	if err := middleware.Run(); err != nil {
		os.Exit(1)
	}
}
