package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reelsmith/internal/config"
	"reelsmith/internal/deps"
)

const endpointTimeout = 10 * time.Second

// EndpointCheck describes a single HTTP reachability check.
type EndpointCheck struct {
	Name        string
	URL         string
	BearerToken string
	Headers     map[string]string
	// Reachable passes any response below 500, for endpoints that have no
	// cheap authenticated GET. Without a bearer token an auth rejection also
	// counts as reachable, since the request was never signed.
	Reachable bool
}

// CheckEndpoint issues one GET and classifies the response.
func CheckEndpoint(ctx context.Context, check EndpointCheck) Result {
	target := strings.TrimSpace(check.URL)
	if target == "" {
		return Result{Name: check.Name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, endpointTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: check.Name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if token := strings.TrimSpace(check.BearerToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range check.Headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: endpointTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: check.Name, Detail: summarizeNetworkError(err)}
	}
	defer resp.Body.Close()

	unsigned := strings.TrimSpace(check.BearerToken) == ""
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{Name: check.Name, Passed: true, Detail: "API reachable"}
	case (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && !(check.Reachable && unsigned):
		return Result{Name: check.Name, Detail: "auth failed (invalid api key)"}
	case check.Reachable && resp.StatusCode < 500:
		return Result{Name: check.Name, Passed: true, Detail: fmt.Sprintf("reachable (%d)", resp.StatusCode)}
	default:
		return Result{Name: check.Name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
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

// CheckSystemDeps evaluates the external binaries a run executes. Both the
// CLI check command and the server startup path use it.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return []deps.Status{deps.CheckFFmpeg(cfg.FFmpegBinary())}
}

func summarizeNetworkError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	return err.Error()
}
