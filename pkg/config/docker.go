package config

import (
	"os"
	"sync"
)

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// containerMarkers are files created by Docker and Podman inside containers.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

// IsRunningInDocker returns true if the application is running inside a container.
// The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		for _, marker := range containerMarkers {
			if _, err := os.Stat(marker); err == nil {
				isDockerResult = true
				return
			}
		}
	})
	return isDockerResult
}

// ResolveHostForDocker returns the address a spatial database on the host
// machine is reachable at. Inside a container, loopback hosts are replaced by
// host.docker.internal; otherwise the host is returned unchanged.
func ResolveHostForDocker(host string) string {
	if !IsRunningInDocker() {
		return host
	}
	return resolveLoopback(host)
}

func resolveLoopback(host string) string {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return "host.docker.internal"
	default:
		return host
	}
}
