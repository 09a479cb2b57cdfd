package main

import (
	"context"
	"os"

	"github.com/terraincognita07/kpitracker/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
