// Package testutils holds helpers shared by integration tests.
package testutils

import (
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

// DockerIsReachable reports whether a docker daemon answers on the usual sockets.
func DockerIsReachable() bool {
	host := os.Getenv("DOCKER_HOST")
	if strings.HasPrefix(host, "unix://") {
		return canDialUnix(strings.TrimPrefix(host, "unix://"))
	}
	if host != "" {
		return true
	}
	if canDialUnix("/var/run/docker.sock") {
		return true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	return canDialUnix(home + "/.docker/run/docker.sock")
}

// SkipWithoutDocker skips tb in -short mode or when docker is unavailable.
func SkipWithoutDocker(tb testing.TB) {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping integration test in short mode")
	}
	if !DockerIsReachable() {
		tb.Skip("docker is not reachable")
	}
}

func canDialUnix(path string) bool {
	if path == "" {
		return false
	}
	conn, err := net.DialTimeout("unix", path, 300*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
