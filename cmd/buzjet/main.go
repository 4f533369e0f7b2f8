// Command buzjet manages the BuzJet travel catalog.
package main

import (
	"os"

	"github.com/stopidhan/backend-buzjet-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
