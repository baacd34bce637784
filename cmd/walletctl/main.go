package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dmitrijs2005/walletvault/internal/client/cli"
	"github.com/dmitrijs2005/walletvault/internal/client/config"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func printBuildInfo() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
}

func main() {
	printBuildInfo()

	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	app.Run(context.Background())
}
