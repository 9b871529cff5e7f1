package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
)

// All of these vars will be assigned automatically, do not modify!
var (
	// "✓" in green
	SuccessSign = color.GreenString("✓")
	// "i" in yellow
	InfoSign = color.YellowString("i")
	// "x" in red
	ErrorSign = color.RedString("x")
	// "!" in magenta
	WarnSign = color.MagentaString("!")

	// # NOTE: Do not modify manually!
	logDir      = ""
	currentDate = time.Now().Local()
	// y_m_d - does not display time
	formatDate = fmt.Sprintf("%d_%d_%d", currentDate.Year(), currentDate.Month(), currentDate.Day())

	mu sync.Mutex

	// # NOTE: Do not modify manually!
	openLogFiles []*os.File

	// Logger used to write to app.log file. Discards until CreateFileLoggers is called.
	appLogger = log.New(io.Discard, "", log.LstdFlags)
	// Logger used to write to error.log file. Discards until CreateFileLoggers is called.
	errorLogger = log.New(io.Discard, "", log.LstdFlags)

	// Logger used to write to stdout.
	consoleInfoLogger = log.New(os.Stdout, "", log.LstdFlags)
	// Logger used to write to stderr.
	consoleErrorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

var errNoLogDir = errors.New("logs directory not created yet")

// name_y_m_d.log
func logFileName(name string) string {
	return fmt.Sprintf("%s_%s.log", name, formatDate)
}

// Creates a directory with specified name and stores the name in a variable.
//
// Returns a nil error if the directory already exists.
func CreateLogsDirectory(dir string) error {
	logDir = dir
	return os.MkdirAll(dir, os.ModePerm)
}

// Creates the app.log and error.log file depending on date.
//
// Appends to files if they already exist.
//
// # Use the CreateNewLogFile function for custom log files.
func CreateFileLoggers() error {
	appLogFile, err := CreateNewLogFile("app")
	if err != nil {
		return err
	}

	errorLogFile, err := CreateNewLogFile("error")
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	appLogger = log.New(appLogFile, "", log.LstdFlags)
	errorLogger = log.New(errorLogFile, "", log.LstdFlags)

	return nil
}

// Creates the loggers for console logging.
//
// Passing nil writers keeps stdout / stderr.
func CreateConsoleLoggers(stdout, stderr io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	mu.Lock()
	defer mu.Unlock()

	consoleInfoLogger = log.New(stdout, "", log.LstdFlags)
	consoleErrorLogger = log.New(stderr, "", log.LstdFlags)
}

// Creates a new log file in logs directory with specified name.
//
// Automatically appends the new log file to open log files and closes it on app exit.
func CreateNewLogFile(name string) (*os.File, error) {
	if logDir == "" {
		return nil, errNoLogDir
	}

	f, err := os.OpenFile(filepath.Join(logDir, logFileName(name)), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	openLogFiles = append(openLogFiles, f)
	mu.Unlock()

	return f, nil
}

// Writes message to the info console and app log, tagged with InfoSign.
func WriteInfo(message interface{}) { write(false, InfoSign, message) }

// Like WriteInfo, tagged with SuccessSign.
func WriteSuccess(message interface{}) { write(false, SuccessSign, message) }

// Like WriteInfo, tagged with WarnSign.
//
// # NOTE: does not shutdown the app, use default log.Fatal or os.Exit(1) for that
func WriteWarn(message interface{}) { write(false, WarnSign, message) }

// Writes message to stderr and the error log, tagged with ErrorSign.
//
// # NOTE: does not shutdown the app, use default log.Fatal or os.Exit(1) for that
func WriteError(message interface{}) { write(true, ErrorSign, message) }

func write(isError bool, sign string, message interface{}) {
	mu.Lock()
	defer mu.Unlock()

	file, console := appLogger, consoleInfoLogger
	if isError {
		file, console = errorLogger, consoleErrorLogger
	}
	file.Println(message)
	console.Printf("[%s] %v\n", sign, message)
}

// This function closes every open log file and falls back to discarding file output.
//
// # NOTE: only use it on app exit.
func CloseLogFiles() error {
	mu.Lock()
	defer mu.Unlock()

	appLogger = log.New(io.Discard, "", log.LstdFlags)
	errorLogger = log.New(io.Discard, "", log.LstdFlags)

	var errs []error
	for _, f := range openLogFiles {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	openLogFiles = nil

	return errors.Join(errs...)
}
