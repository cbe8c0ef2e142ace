package main

import (
	"os"

	"github.com/DebasishMaji/ecommerce-personalization/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
