package main

import (
	"os"

	"github.com/harrisonrobin/baronboard/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
