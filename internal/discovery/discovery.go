// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package discovery locates the Ruma backend on the local machine.
//
// The backend may come up on any of a fixed set of candidate ports. Discovery
// probes a previously saved URL first, then walks the candidate list in
// order; the first URL answering GET /status with 200 wins and is persisted
// for the next launch. Probes are sequential with no retries - a failure just
// means "not here, next candidate".
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CandidatePorts is the fixed port list probed in order when the saved URL is
// stale. Must stay in sync with the backend's bind fallback list.
var CandidatePorts = []int{8000, 8001, 8080, 8888, 3000, 5000}

// DefaultHost is the host candidates are probed on.
const DefaultHost = "127.0.0.1"

// ProbeTimeout bounds each individual probe.
const ProbeTimeout = 2 * time.Second

// Result reports the outcome of a discovery run.
type Result struct {
	// URL is the working backend base URL, empty when Reachable is false.
	URL string
	// Reachable is false when no candidate answered.
	Reachable bool
	// FromSaved is true when the previously saved URL was still good.
	FromSaved bool
}

// Discoverer probes for a running backend.
type Discoverer struct {
	httpClient *http.Client
	host       string
	ports      []int
}

// New creates a Discoverer with the default host and candidate ports.
func New() *Discoverer {
	return &Discoverer{
		httpClient: &http.Client{Timeout: ProbeTimeout},
		host:       DefaultHost,
		ports:      CandidatePorts,
	}
}

// NewWithCandidates creates a Discoverer probing the given host and ports.
func NewWithCandidates(host string, ports []int) *Discoverer {
	if host == "" {
		host = DefaultHost
	}
	if len(ports) == 0 {
		ports = CandidatePorts
	}
	return &Discoverer{
		httpClient: &http.Client{Timeout: ProbeTimeout},
		host:       host,
		ports:      ports,
	}
}

// Discover probes savedURL first (if non-empty), then the candidate list in
// order. Network failures are swallowed and treated as "not reachable".
func (d *Discoverer) Discover(ctx context.Context, savedURL string) Result {
	if savedURL != "" && d.probe(ctx, savedURL) {
		return Result{URL: savedURL, Reachable: true, FromSaved: true}
	}

	for _, port := range d.ports {
		url := fmt.Sprintf("http://%s:%d", d.host, port)
		if url == savedURL {
			continue // already probed above
		}
		if d.probe(ctx, url) {
			return Result{URL: url, Reachable: true}
		}
	}

	return Result{Reachable: false}
}

// probe issues GET <base>/status and accepts only a 200 response.
func (d *Discoverer) probe(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/status", nil)
	if err != nil {
		return false
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
