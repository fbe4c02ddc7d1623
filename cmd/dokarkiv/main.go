package main

import (
	"os"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
