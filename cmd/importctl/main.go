// Package main is the entry point for the importctl binary.
package main

import (
	"os"

	"github.com/JonMunkholm/clientimport/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
