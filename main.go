package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ehb/ragchat/config"
	"github.com/ehb/ragchat/database"
	"github.com/ehb/ragchat/logger"
	"github.com/ehb/ragchat/web"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func initLogger() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG, config.GetLogFolder())
	case config.Info:
		logger.InitLogger(logging.INFO, config.GetLogFolder())
	case config.Notice:
		logger.InitLogger(logging.NOTICE, config.GetLogFolder())
	case config.Warn:
		logger.InitLogger(logging.WARNING, config.GetLogFolder())
	case config.Error:
		logger.InitLogger(logging.ERROR, config.GetLogFolder())
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration:\n%v", err)
	}
	return cfg
}

func runWebServer(configPath string) {
	cfg := loadConfig(configPath)
	initLogger()
	defer logger.CloseLogger()
	logger.Infof("%v %v", config.GetName(), config.GetVersion())

	server := web.NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Error("start server failed:", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for sig := range sigCh {
		if err := server.Stop(); err != nil {
			logger.Warning("stop server err:", err)
		}
		if sig != syscall.SIGHUP {
			return
		}

		cfg = loadConfig(configPath)
		server = web.NewServer(cfg)
		if err := server.Start(); err != nil {
			logger.Error("restart server failed:", err)
			return
		}
	}
}

func migrate(configPath string) {
	cfg := loadConfig(configPath)
	initLogger()

	open, dialect, err := database.NewOpener(&cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.InitSchema(context.Background(), database.NewExecutor(open, dialect)); err != nil {
		log.Fatal(err)
	}
	fmt.Println("schema is up to date")
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   config.GetName(),
		Short: "Retrieval-augmented chat web service",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer(configPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the users table if it does not exist",
		Run: func(cmd *cobra.Command, args []string) {
			migrate(configPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetName(), config.GetVersion())
		},
	}

	rootCmd.AddCommand(runCmd, migrateCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
