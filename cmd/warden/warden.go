package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/devusSs/warden/internal/bot"
	"github.com/devusSs/warden/internal/bot/captcha"
	"github.com/devusSs/warden/internal/bot/roomer"
	"github.com/devusSs/warden/internal/config"
	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/database/memory"
	"github.com/devusSs/warden/internal/database/postgres"
	"github.com/devusSs/warden/internal/diagnosis"
	"github.com/devusSs/warden/internal/invite"
	"github.com/devusSs/warden/internal/logging"
	"github.com/devusSs/warden/internal/server"
	"github.com/devusSs/warden/internal/system"
	"github.com/devusSs/warden/internal/telemetry"
	"github.com/devusSs/warden/internal/version"
)

func main() {
	startTime := time.Now()

	/*
		Usually the default flags will work fine.
		Check the Makefile or documentation for any configuration questions.
	*/
	logPath := flag.String("l", "./logs", "[REQ] sets the logging path")
	cfgPath := flag.String("c", "./files/config.json", "[REQ] sets config path")

	// Diagnosis mode is designed for the app to parse it's own log files.
	//
	// It will print any results from error.log here to help the user figure out potential errors at runtime.
	diagMode := flag.Bool("d", false, "[OPT] runs the app in diagnosis mode")

	// Prints available app build information.
	versionMode := flag.Bool("v", false, "[OPT] prints the build information of the app")

	// Prints the url to add the bot to a guild.
	inviteMode := flag.Bool("i", false, "[OPT] prints the bot invite url and exits")

	// Keeps settings and events in memory only, they are lost on exit.
	memoryMode := flag.Bool("memory", false, "[OPT] uses an in-memory store instead of Postgres")

	flag.Parse()

	// Print the version / build information if user wants to, exits after.
	if *versionMode {
		version.PrintBuildInformationRaw()
		return
	}

	system.CallClear()

	if err := logging.CreateLogsDirectory(*logPath); err != nil {
		log.Fatalf("[%s] Error creating logs directory: %s", logging.ErrorSign, err.Error())
	}

	if err := logging.CreateFileLoggers(); err != nil {
		log.Fatalf("[%s] Error creating log files: %s", logging.ErrorSign, err.Error())
	}

	logging.CreateConsoleLoggers(os.Stdout, os.Stderr)

	// ! It's safe to use the logging.WriteX methods from here.

	// Run diagnosis if user wishes to.
	if *diagMode {
		errCount, err := diagnosis.RunDiagnosis(*logPath, *cfgPath, !*memoryMode)
		if err != nil {
			log.Fatalf("Error running diagnosis: %s", err.Error())
		}
		fmt.Printf("\n[S] Total errors found: %d\n", errCount)
		return
	}

	if system.DetermineOS() == "unknown" {
		logging.WriteWarn("Unsupported OS, things may break")
	}

	// Test DNS resolution so we know if we are connected to a network.
	if err := system.TestConnection(); err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	logging.WriteSuccess("Successfully loaded config")

	if *inviteMode {
		url, err := invite.URL(cfg.Discord.ApplicationID, cfg.Discord.ClientSecret)
		if err != nil {
			logging.WriteError(err)
			os.Exit(1)
		}
		logging.WriteInfo(fmt.Sprintf("Invite the bot with: %s", url))
		return
	}

	if err := cfg.CheckConfig(!*memoryMode); err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	logging.WriteSuccess("Successfully checked config")

	svc, err := openDatabase(cfg, *memoryMode)
	if err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	metrics := telemetry.New(prometheus.DefaultRegisterer)

	discordBot, err := bot.New(cfg)
	if err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	captchaCog, err := captcha.New(discordBot.Client(), svc, captcha.Options{
		DataDir:        cfg.Captcha.DataDir,
		CleanupDelay:   time.Duration(cfg.Captcha.CleanupDelaySeconds) * time.Second,
		VerifyCooldown: time.Duration(cfg.Captcha.VerifyCooldownSeconds) * time.Second,
		Metrics:        metrics,
	})
	if err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	roomerCog, err := roomer.New(discordBot.Client(), svc, roomer.Options{
		DeletionDelay: time.Duration(cfg.Roomer.DeletionDelaySeconds) * time.Second,
		Metrics:       metrics,
	})
	if err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	for _, cog := range []bot.Cog{captchaCog, roomerCog} {
		if err := discordBot.Register(cog); err != nil {
			logging.WriteError(err)
			os.Exit(1)
		}
	}

	logging.WriteSuccess(fmt.Sprintf("Registered cogs (framework %s)", version.Framework))

	// Setup needed functions to handle Discord events.
	discordBot.SetupHandleFuncs()

	if err := discordBot.Connect(); err != nil {
		logging.WriteError(err)
		os.Exit(1)
	}

	logging.WriteSuccess("Successfully connected to Discord")

	var srv *server.Server
	if cfg.Metrics.Addr != "" {
		srv = server.New(cfg.Metrics.Addr, prometheus.DefaultGatherer, discordBot.Ready)
		srv.Start()
		logging.WriteInfo(fmt.Sprintf("Serving metrics on %s", cfg.Metrics.Addr))
	}

	logging.WriteInfo(fmt.Sprintf("Initiating app took %.2f second(s)", time.Since(startTime).Seconds()))

	logging.WriteInfo("Press CTRL+C to shutdown the app")

	// Wait for CTRL+C for app exit.
	discordBot.AwaitCancel()

	logging.WriteInfo("Received CTRL+C, shutting down...")

	// !APP EXIT

	// Wait group to handle async shutdown steps.
	wg := &sync.WaitGroup{}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			logging.WriteError(err)
		}
		cancel()
	}

	// Disconnect from Discord.
	wg.Add(1)
	if err := discordBot.Disconnect(wg); err != nil {
		logging.WriteError(err)
	}

	logging.WriteSuccess("Successfully disconnected from Discord")

	if err := svc.Close(); err != nil {
		log.Fatalf("[%s] Error closing database connection: %s", logging.ErrorSign, err.Error())
	}

	logging.WriteSuccess("Successfully closed database connection")

	// DO NOT USE CONSOLE OR FILE LOGGERS AT THIS POINT ANYMORE
	if err := logging.CloseLogFiles(); err != nil {
		log.Fatalf("[%s] Error closing logs: %s", logging.ErrorSign, err.Error())
	}

	log.Printf("[%s] Successfully closed log files and loggers\n", logging.SuccessSign)

	wg.Wait() // Wait for all operations to finish before exiting app.

	log.Printf("[%s] App ran for %.2f second(s)", logging.InfoSign, time.Since(startTime).Seconds())
}

// Connects to Postgres and migrates the tables, or returns the in-memory store.
func openDatabase(cfg *config.Config, inMemory bool) (database.Service, error) {
	if inMemory {
		logging.WriteWarn("Using the in-memory store, settings are lost on exit")
		return memory.New(), nil
	}

	svc, err := postgres.New(cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}

	if err := svc.Ping(); err != nil {
		return nil, err
	}

	logging.WriteSuccess("Successfully connected to Postgres database")

	if err := svc.Migrate(); err != nil {
		return nil, err
	}

	logging.WriteSuccess("Successfully migrated database tables")

	return svc, nil
}
