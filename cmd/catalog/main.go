package main

import (
	"context"
	"os"

	"github.com/spf13/afero"

	"MiniCatalog/internal/cli"
)

func main() {
	cmd := cli.NewCommand(afero.NewOsFs())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
