// Command pdfsift lists the PDF documents under a directory that contain a
// string, reading text layers first and recognising scanned pages on demand.
package main

import (
	"os"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/cli"
	"github.com/custodia-labs/pdfsift/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetFactory(app.New())

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
