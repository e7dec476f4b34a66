package main

import (
	"github.com/meridianlabs/brandgraph/internal/server"
	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/logger"
	"github.com/meridianlabs/brandgraph/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
