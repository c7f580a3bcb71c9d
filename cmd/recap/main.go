package main

import (
	"context"
	"os"

	"github.com/bnema/recap/internal/cli"
	"github.com/bnema/recap/internal/infrastructure/logger"
)

var version = "dev"

func main() {
	if err := cli.NewCmdRoot(version).ExecuteContext(context.Background()); err != nil {
		logger.Error.Printf("%v", err)
		os.Exit(1)
	}
}
