package main

import (
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/cli"
)

func main() {
	cli.Execute()
}
