package main

import (
	"os"

	"github.com/user/memorial-extractor/internal/delivery/cli"
)

func main() {
	os.Exit(cli.Execute())
}
