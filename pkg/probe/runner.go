/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package probe pkg/probe/runner.go
package probe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/cloudpulse/cloudpulse/pkg/models"
)

var errInvalidConfig = errors.New("invalid probe config")

// recordBuffer sizes the shared record channel. Probe failures are data,
// so the channel only backs up if the aggregator stalls; a sustained stall
// is the system's known memory pressure point.
const recordBuffer = 4096

// Runner probes endpoints concurrently. Each endpoint gets one long-lived
// probe loop; a shared weighted semaphore caps in-flight probes across the
// fleet, and an optional rate limiter caps fleet-wide probes per second.
type Runner struct {
	config  Config
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	client  *http.Client
	records chan models.ProbeRecord
}

// NewRunner creates a runner from a validated config.
func NewRunner(cfg Config) *Runner {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.ConcurrencyLimit))
	}

	return &Runner{
		config:  cfg,
		sem:     semaphore.NewWeighted(cfg.ConcurrencyLimit),
		limiter: limiter,
		client: &http.Client{
			Timeout: time.Duration(cfg.RTTTimeout),
			// Redirects count as reachable; don't chase them.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		records: make(chan models.ProbeRecord, recordBuffer),
	}
}

// Records returns the stream of probe outcomes consumed by the aggregator.
func (r *Runner) Records() <-chan models.ProbeRecord {
	return r.records
}

// Start launches one probe loop per endpoint. Loops run until ctx is
// canceled; shutdown is the only termination path.
func (r *Runner) Start(ctx context.Context, endpoints []models.Endpoint) {
	log.Printf("Starting probe runner with %d endpoints", len(endpoints))

	for _, endpoint := range endpoints {
		r.StartEndpoint(ctx, endpoint)
	}
}

// StartEndpoint spawns a probe loop for a single endpoint. Used both at
// startup and when endpoints are added to a running monitor.
func (r *Runner) StartEndpoint(ctx context.Context, endpoint models.Endpoint) {
	go r.probeLoop(ctx, endpoint)
}

func (r *Runner) probeLoop(ctx context.Context, endpoint models.Endpoint) {
	log.Printf("Starting probe loop for endpoint %s (%s)", endpoint.ID, endpoint.Address())

	if endpoint.ProbeType == models.ProbeICMP {
		log.Printf("ICMP probing not implemented, falling back to TCP for %s", endpoint.ID)
	}

	for {
		record := r.probeAndRecord(ctx, endpoint)

		select {
		case r.records <- record:
		case <-ctx.Done():
			log.Printf("Probe loop ended for endpoint %s", endpoint.ID)
			return
		}

		timer := time.NewTimer(r.sleepDuration())

		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			log.Printf("Probe loop ended for endpoint %s", endpoint.ID)

			return
		}
	}
}

// probeAndRecord runs one bounded probe attempt under the fleet-wide
// concurrency and rate limits and folds every failure mode into the record.
func (r *Runner) probeAndRecord(ctx context.Context, endpoint models.Endpoint) models.ProbeRecord {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.FailureRecord(endpoint.ID, "canceled")
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return models.FailureRecord(endpoint.ID, "canceled")
	}
	defer r.sem.Release(1)

	start := time.Now()
	ok, errCode := r.probeOnce(ctx, endpoint)
	elapsed := time.Since(start)

	if !ok {
		return models.FailureRecord(endpoint.ID, errCode)
	}

	return models.SuccessRecord(endpoint.ID, float64(elapsed)/float64(time.Millisecond))
}

func (r *Runner) probeOnce(ctx context.Context, endpoint models.Endpoint) (ok bool, errCode string) {
	switch endpoint.ProbeType {
	case models.ProbeHTTP:
		return r.probeHTTP(ctx, endpoint)
	case models.ProbeTCP, models.ProbeICMP:
		// ICMP degrades to the TCP path; see probeLoop.
		return r.probeTCP(ctx, endpoint)
	default:
		return r.probeTCP(ctx, endpoint)
	}
}

// probeTCP attempts a bounded-time connect. An established connection is
// success; it is closed immediately. DNS and connect errors are failed
// probes, not engine errors.
func (r *Runner) probeTCP(ctx context.Context, endpoint models.Endpoint) (ok bool, errCode string) {
	addr := net.JoinHostPort(endpoint.Host, strconv.Itoa(int(endpoint.Port)))

	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(r.config.RTTTimeout))
	defer cancel()

	var d net.Dialer

	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, "timeout"
		}

		return false, "connect"
	}

	if err := conn.Close(); err != nil {
		log.Printf("Error closing connection to %s: %v", addr, err)
	}

	return true, ""
}

// probeHTTP issues a bounded-time HEAD request with a cache-busting query
// parameter. Any 2xx or 3xx status is success.
func (r *Runner) probeHTTP(ctx context.Context, endpoint models.Endpoint) (ok bool, errCode string) {
	scheme := "http"
	if endpoint.Port == 443 || endpoint.Port == 8443 {
		scheme = "https"
	}

	url := fmt.Sprintf("%s://%s?cache_buster=%d", scheme, endpoint.Address(), time.Now().UnixMilli())

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(r.config.RTTTimeout))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, http.NoBody)
	if err != nil {
		return false, "request"
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, "timeout"
		}

		return false, "request"
	}

	if err := resp.Body.Close(); err != nil {
		log.Printf("Error closing response body for %s: %v", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return false, "http_status"
	}

	return true, ""
}

// sleepDuration jitters the inter-probe delay by +/- jitter_percent,
// floored at minSleep.
func (r *Runner) sleepDuration() time.Duration {
	base := time.Duration(r.config.ProbeInterval)
	jitterRange := base * time.Duration(r.config.JitterPercent) / 100

	sleep := base
	if jitterRange > 0 {
		sleep += time.Duration(rand.Int64N(int64(2*jitterRange)+1)) - jitterRange
	}

	if sleep < minSleep {
		sleep = minSleep
	}

	return sleep
}
