// cmd/card-submitter/main.go
package main

import (
	"os"

	"card-submitter/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
