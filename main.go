package main

import (
	cmd "github.com/slulibrary/nerdemo/cmd/nerdemo"
	"github.com/slulibrary/nerdemo/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting nerdemo")
	cmd.Execute()
}
