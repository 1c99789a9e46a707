// Package main boots the inventory register service.
package main

import (
	"os"

	"github.com/fairyhunter13/inventory-register-service/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
