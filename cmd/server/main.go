package main

import (
	"github.com/argus-intel/argus/backend/internal/server"
	"github.com/argus-intel/argus/backend/internal/util"
	"github.com/argus-intel/argus/backend/pkg/logger"
	"github.com/argus-intel/argus/backend/pkg/logger/console"

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
