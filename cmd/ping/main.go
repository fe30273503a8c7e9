// Command ping checks /healthz of a local Lumina server and exits non-zero
// when the server or its storage is down. Intended for Docker HEALTHCHECK:
//
//	HEALTHCHECK CMD ["/ping"]
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort    = 8080
	healthEndpoint = "/healthz"
	requestTimeout = 2 * time.Second

	// exit codes
	codeRequestFailed     = 2
	codeBadHTTPStatus     = 3
	codeDecodeError       = 4
	codeReportedUnhealthy = 5
)

// healthResp mirrors the /healthz body.
type healthResp struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func main() {
	url := healthURL()
	client := &http.Client{Timeout: requestTimeout}

	resp, err := client.Get(url)
	if err != nil {
		fail(codeRequestFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()

	var h healthResp
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil && !errors.Is(err, io.EOF) {
		fail(codeDecodeError, "decode error: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		fail(codeReportedUnhealthy, "storage down: %s", h.Error)
	case resp.StatusCode != http.StatusOK:
		fail(codeBadHTTPStatus, "unexpected HTTP status %d", resp.StatusCode)
	case h.Status != "" && h.Status != "ok":
		fail(codeReportedUnhealthy, "service reported %q", h.Status)
	}

	log.Printf("healthy: %s", url)
}

// healthURL honours PING_URL, else builds the local URL from APP_PORT.
func healthURL() string {
	if u := os.Getenv("PING_URL"); u != "" {
		return u
	}
	port := defaultPort
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p <= 65535 {
			port = p
		}
	}
	return fmt.Sprintf("http://localhost:%d%s", port, healthEndpoint)
}

func fail(code int, format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(code)
}
