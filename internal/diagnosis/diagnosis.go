// Package diagnosis checks the environment the bot runs in and prints what it finds.
package diagnosis

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devusSs/warden/internal/config"
	"github.com/devusSs/warden/internal/database/postgres"
	"github.com/devusSs/warden/internal/invite"
	"github.com/devusSs/warden/internal/logging"
	"github.com/devusSs/warden/internal/system"
)

// Latency above this is reported, gateway events and interactions will feel slow.
const maxLatency = 500 * time.Millisecond

type diagnosis struct {
	out      io.Writer
	errCount int
}

// Runs every check and returns the number of problems found.
//
// Postgres is only checked if usePostgres is true.
func RunDiagnosis(logPath, cfgPath string, usePostgres bool) (int, error) {
	d := &diagnosis{out: os.Stdout}

	d.printInfo("Running app in diagnostics mode...")

	cfg := d.checkConfig(cfgPath, usePostgres)

	if cfg != nil && usePostgres {
		d.checkPostgres(cfg)
	}

	d.checkOS()

	if err := d.checkDiscord(); err != nil {
		return d.errCount, err
	}

	d.printInfo("Checking error.log file for information...")

	foundErrsLogFile, err := logging.CheckErrorLogs(logPath)
	if err != nil {
		d.errCount++
		return d.errCount, err
	}
	if foundErrsLogFile != "" {
		d.fail(foundErrsLogFile)
	}

	return d.errCount, nil
}

func (d *diagnosis) checkConfig(cfgPath string, usePostgres bool) *config.Config {
	d.printInfo("Loading config from file...")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		d.fail(fmt.Sprintf("Error loading config: %s", err.Error()))
		return nil
	}

	d.printInfo("Checking config...")
	if err := cfg.CheckConfig(usePostgres); err != nil {
		d.fail(fmt.Sprintf("Error checking config: %s", err.Error()))
	}

	if cfg.Discord.ApplicationID == "" {
		d.fail("Missing application id, cannot build the invite url")
	} else if _, err := invite.URL(cfg.Discord.ApplicationID, cfg.Discord.ClientSecret); err != nil {
		d.fail(fmt.Sprintf("Error building invite url: %s", err.Error()))
	}

	return cfg
}

func (d *diagnosis) checkPostgres(cfg *config.Config) {
	d.printInfo("Connecting to Postgres database...")
	svc, err := postgres.New(cfg.PostgresDSN())
	if err != nil {
		d.fail(fmt.Sprintf("Error creating Postgres connection: %s", err.Error()))
		return
	}
	defer svc.Close()

	d.printInfo("Pinging database...")
	if err := svc.Ping(); err != nil {
		d.fail(fmt.Sprintf("Error pinging database: %s", err.Error()))
	}
}

// Checks the OS for unsupported versions / platforms.
func (d *diagnosis) checkOS() {
	d.printInfo("Determining OS platform and version...")

	osV := system.DetermineOS()
	if osV != "linux" {
		d.fail(fmt.Sprintf("Determined OS \"%s\" may be unsupported (does not match recommended OS Linux)", osV))
	}
}

// Checks the network's connection to Discord.
func (d *diagnosis) checkDiscord() error {
	d.printInfo("Testing connection to Discord...")

	if err := system.TestConnection(); err != nil {
		return err
	}

	latency, err := system.Latency(5 * time.Second)
	if err != nil {
		d.fail(fmt.Sprintf("Could not reach Discord: %s", err.Error()))
		return nil
	}
	if latency > maxLatency {
		d.fail(fmt.Sprintf("Connecting to Discord took %d ms (more than %d ms). Events may be delayed", latency.Milliseconds(), maxLatency.Milliseconds()))
	}
	return nil
}

func (d *diagnosis) fail(message string) {
	d.errCount++
	d.printError(message)
}

func (d *diagnosis) printInfo(message string) {
	fmt.Fprintf(d.out, "[%s] %s\n", logging.InfoSign, message)
}

func (d *diagnosis) printError(message string) {
	fmt.Fprintf(d.out, "[%s] %s\n", logging.ErrorSign, message)
}
