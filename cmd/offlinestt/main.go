// Command offlinestt records speech from the default input device and
// transcribes it with a locally installed Whisper model.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
