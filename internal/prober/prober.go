package prober

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/randomplaygames97-coder/helperbot-pinger/internal/stats"
)

const (
	// failureStreakThreshold is the consecutive-failure count at which the
	// loop switches to the accelerated (halved) interval.
	failureStreakThreshold = 3

	// summaryEvery controls the periodic stats log line. At the default
	// 5-minute interval this fires roughly hourly.
	summaryEvery = 12

	// errorCooldown is the fixed pause after an unexpected loop error.
	errorCooldown = 60 * time.Second
)

// Prober repeatedly probes the target over its endpoint fallback list and
// records outcomes into the shared statistics record.
type Prober struct {
	target          string
	endpoints       []string
	intervalSeconds int
	client          *http.Client
	stats           *stats.Stats
	logger          *slog.Logger
}

// New creates a Prober for the given target base URL. Endpoints are tried
// in the given priority order within each cycle.
func New(target string, endpoints []string, intervalSeconds, timeoutSeconds int, st *stats.Stats, logger *slog.Logger) *Prober {
	return &Prober{
		target:          target,
		endpoints:       endpoints,
		intervalSeconds: intervalSeconds,
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		stats:  st,
		logger: logger,
	}
}

// PingOnce runs a single probe cycle: endpoints are tried in priority
// order and the first 200 response makes the cycle successful. Returns
// true on success, false when every endpoint was exhausted.
func (p *Prober) PingOnce(ctx context.Context) bool {
	p.stats.BeginCycle()

	for _, endpoint := range p.endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target+endpoint, nil)
		if err != nil {
			p.logger.Warn("Failed to build request",
				slog.String("endpoint", endpoint),
				slog.Any("err", err))
			continue
		}

		start := time.Now()
		res, err := p.client.Do(req)
		if err != nil {
			p.logEndpointError(endpoint, err)
			continue
		}
		res.Body.Close()

		if res.StatusCode == http.StatusOK {
			p.stats.RecordSuccess()
			p.logger.Info("Ping successful",
				slog.String("endpoint", endpoint),
				slog.Duration("response_time", time.Since(start)))
			return true
		}
		// A non-200 response falls through to the next endpoint without
		// its own failure class.
	}

	p.stats.RecordFailure()
	p.logger.Error("All endpoints failed",
		slog.Int("consecutive_failures", p.stats.ConsecutiveFailures()))
	return false
}

// NextSleep returns the delay before the next cycle: the full interval
// normally, floor(interval/2) seconds once the failure streak reaches the
// threshold.
func (p *Prober) NextSleep() time.Duration {
	if p.stats.ConsecutiveFailures() >= failureStreakThreshold {
		return time.Duration(p.intervalSeconds/2) * time.Second
	}
	return time.Duration(p.intervalSeconds) * time.Second
}

// Run executes probe cycles until the context is cancelled. Cancellation
// is the only normal exit path.
func (p *Prober) Run(ctx context.Context) {
	p.logger.Info("Starting pinger",
		slog.String("target", p.target),
		slog.Int("interval_seconds", p.intervalSeconds))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Pinger stopped")
			return
		default:
		}

		delay := p.cycle(ctx)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("Pinger stopped")
			return
		case <-timer.C:
		}
	}
}

// cycle runs one probe cycle plus its bookkeeping and returns the delay
// before the next one. A panic escaping the cycle is logged and answered
// with a fixed cooldown so the loop never dies.
func (p *Prober) cycle(ctx context.Context) (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Unexpected error in probe loop", slog.Any("err", r))
			delay = errorCooldown
		}
	}()

	p.PingOnce(ctx)

	snap := p.stats.Snapshot()
	if snap.TotalPings%summaryEvery == 0 {
		p.logger.Info("Periodic stats",
			slog.Float64("uptime_percentage", snap.UptimePercentage),
			slog.Int64("total_pings", snap.TotalPings),
			slog.Int("consecutive_failures", snap.ConsecutiveFailures))
	}

	delay = p.NextSleep()
	if snap.ConsecutiveFailures >= failureStreakThreshold {
		p.logger.Warn("High failure rate, reducing interval",
			slog.Duration("sleep", delay))
	}

	return delay
}

func (p *Prober) logEndpointError(endpoint string, err error) {
	var netErr net.Error
	var opErr *net.OpError

	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		p.logger.Warn("Timeout", slog.String("endpoint", endpoint))
	case errors.As(err, &opErr):
		p.logger.Warn("Connection error",
			slog.String("endpoint", endpoint),
			slog.Any("err", err))
	default:
		p.logger.Warn("Request error",
			slog.String("endpoint", endpoint),
			slog.Any("err", err))
	}
}
