package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version of the cog framework in internal/bot. Cogs declare the minimum they need.
const Framework = "1.2.0"

var (
	buildVersion = "dev"
	buildDate    = ""
	buildOS      = runtime.GOOS
	buildArch    = runtime.GOARCH
	goVersion    = runtime.Version()
)

// Function to print build information without log.
func PrintBuildInformationRaw() {
	fmt.Printf("Build version: \t\t%s\n", buildVersion)
	fmt.Printf("Build date: \t\t%s\n", buildDate)
	fmt.Printf("Build OS: \t\t%s\n", buildOS)
	fmt.Printf("Build arch: \t\t%s\n", buildArch)
	fmt.Printf("Go version: \t\t%s\n", goVersion)
	fmt.Printf("Framework: \t\t%s\n", Framework)
}

func Build() string {
	return buildVersion
}

// Checks that a cog requiring at least minVersion can run on framework.
func Compatible(framework, minVersion string) error {
	have, err := semver.NewVersion(strings.TrimPrefix(framework, "v"))
	if err != nil {
		return fmt.Errorf("invalid framework version %q: %w", framework, err)
	}

	if minVersion == "" {
		return nil
	}

	c, err := semver.NewConstraint(">= " + strings.TrimPrefix(minVersion, "v"))
	if err != nil {
		return fmt.Errorf("invalid minimum version %q: %w", minVersion, err)
	}

	if !c.Check(have) {
		return fmt.Errorf("needs framework %s or newer, running %s", minVersion, framework)
	}

	return nil
}

// Reports whether v is a valid semantic version.
func Valid(v string) bool {
	_, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	return err == nil
}
