// Package to collect (NOT be send anywhere) OS & network information.
package system

import (
	"net"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Host every connectivity check resolves, the gateway and REST api live below it.
const discordHost = "discord.com"

var clear = map[string][]string{
	"linux":   {"clear"},
	"darwin":  {"clear"},
	"windows": {"cmd", "/c", "cls"},
}

// Detects the OS of the runtime => determined by compile option GOOS.
func DetermineOS() string {
	switch runtime.GOOS {
	case "windows", "linux", "darwin":
		return runtime.GOOS
	default:
		return "unknown"
	}
}

// Detects if there is a working DNS resolver on the host or the network.
//
// This might not represent a working internet connection, usually a good hint however.
func TestConnection() error {
	_, err := net.LookupHost(discordHost)
	return err
}

// Dials the Discord api over TCP and returns how long the handshake took.
func Latency(timeout time.Duration) (time.Duration, error) {
	start := time.Now()
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(discordHost, "443"), timeout)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return time.Since(start), nil
}

// Clears the terminal. Returns false on unsupported platforms.
func CallClear() bool {
	args, ok := clear[runtime.GOOS]
	if !ok {
		return false
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	return cmd.Run() == nil
}
