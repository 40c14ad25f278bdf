// Command wwtools converts Wwise WEM audio to OGG Vorbis and inspects or
// extracts Wwise BNK soundbanks.
package main

import (
	"os"

	"github.com/wwiseaudio/wwtools/cmd/wwtools/commands"
	"github.com/wwiseaudio/wwtools/internal/output"
)

func main() {
	if err := commands.Execute(); err != nil {
		output.Errorf("%v\n", err)
		os.Exit(1)
	}
}
