// Command csvplugin serves a directory of delimited text files as a SQL
// database to the Tabularis host over line-delimited JSON-RPC on
// stdin/stdout. Diagnostics go to stderr.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	csvplugin "github.com/tabularis-db/csvplugin"
	"github.com/tabularis-db/csvplugin/config"
	"github.com/tabularis-db/csvplugin/rpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to an HCL config file")
	initConfig := flag.String("init-config", "", "write a default config file to this path and exit")
	flag.Parse()

	if *initConfig != "" {
		return config.Export(*initConfig, config.DefaultConfig())
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	store := csvplugin.NewStore(logger)
	defer store.Close()

	handler := csvplugin.NewHandler(store, cfg.PageSize)
	server := rpc.NewServer(os.Stdin, os.Stdout, handler.Handle, logger)
	return server.Serve()
}
