package main

import (
	"os"

	"pairpilot/cli"
)

func main() {
	os.Exit(cli.Execute())
}
