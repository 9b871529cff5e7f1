package logging

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Matches the date and time the standard logger puts in front of every line.
var logPrefix = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}\s\d{2}:\d{2}:\d{2}\s`)

// Reads today's error log and returns a printable summary.
//
// Returns an empty string if no errors were logged today.
func CheckErrorLogs(logsDir string) (string, error) {
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		return "", errors.New("logs directory does not exist")
	}

	f, err := os.Open(filepath.Join(logsDir, logFileName("error")))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	foundErrs := []string{}
	for scanner.Scan() {
		line := logPrefix.ReplaceAllString(scanner.Text(), "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		foundErrs = append(foundErrs, line)
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	if len(foundErrs) == 0 {
		return "", nil
	}

	return fmt.Sprintf("\nFound %d error(s) in error log file.\nThe following errors have been found:\n\n%s",
		len(foundErrs), strings.Join(foundErrs, "\n")), nil
}
