package main

import (
	"os"

	"github.com/bagage/flatisfy/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
