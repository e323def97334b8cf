package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"prunarr/internal/config"
	"prunarr/internal/services"
	"prunarr/internal/services/radarr"
)

const radarrCheckTimeout = 10 * time.Second

// CheckRadarr verifies Radarr connectivity and authentication through the
// system status endpoint. Extra client options are applied after the config
// defaults.
func CheckRadarr(ctx context.Context, cfg *config.Config, opts ...radarr.Option) Result {
	const name = "Radarr"

	if cfg.Radarr.APIKey == "" {
		return Result{Name: name, Detail: "missing api key (set RADARR_API_KEY)"}
	}
	client, err := radarr.NewFromConfig(cfg, opts...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, radarrCheckTimeout)
	defer cancel()

	status, err := client.SystemStatus(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeRadarrError(err)}
	}
	detail := "reachable"
	if status.Version != "" {
		detail = fmt.Sprintf("reachable (v%s)", status.Version)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRequestsFile verifies the request list exists and is readable.
func CheckRequestsFile(path string) Result {
	const name = "Requests file"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

func summarizeRadarrError(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "auth failed (invalid api key)"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, services.ErrTimeout):
		return "status check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "status check timed out"
	}
	return err.Error()
}
