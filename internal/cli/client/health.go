package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"
)

const healthTimeout = 5 * time.Second

// Health is the result of probing a backend
type Health struct {
	Connected bool
	// Detail explains a failed probe
	Detail string
}

// CheckHealth probes <baseURL>/actuator/health. It bypasses the request
// pipeline: no token is sent and no effects are produced.
func CheckHealth(ctx context.Context, httpClient *http.Client, baseURL string) Health {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	endpoint := strings.TrimRight(baseURL, "/") + "/actuator/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Health{Detail: err.Error()}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return Health{Detail: "Cannot connect to the server. Is the backend running?"}
		}
		return Health{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Health{Detail: fmt.Sprintf("Server responded with status %d", resp.StatusCode)}
	}
	return Health{Connected: true}
}
