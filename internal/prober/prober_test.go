package prober_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/randomplaygames97-coder/helperbot-pinger/internal/prober"
	"github.com/randomplaygames97-coder/helperbot-pinger/internal/stats"
)

func TestProber(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Prober Suite")
}

var defaultEndpoints = []string{"/health", "/ping", "/", "/status"}

var _ = Describe("Prober", func() {
	var (
		log       *slog.Logger
		pingStats *stats.Stats
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
		pingStats = stats.New()
	})

	Describe("PingOnce", func() {
		It("succeeds on the first endpoint returning 200", func() {
			var mu sync.Mutex
			var paths []string

			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				paths = append(paths, r.URL.Path)
				mu.Unlock()
				w.WriteHeader(http.StatusOK)
			}))
			defer mock.Close()

			p := prober.New(mock.URL, defaultEndpoints, 300, 5, pingStats, log)
			ok := p.PingOnce(context.Background())
			Expect(ok).To(BeTrue())

			mu.Lock()
			defer mu.Unlock()
			Expect(paths).To(Equal([]string{"/health"}))

			snap := pingStats.Snapshot()
			Expect(snap.SuccessfulPings).To(Equal(int64(1)))
			Expect(snap.FailedPings).To(Equal(int64(0)))
			Expect(snap.ConsecutiveFailures).To(Equal(0))
			Expect(snap.UptimePercentage).To(Equal(100.0))
		})

		It("falls through non-200 endpoints and stops at the first success", func() {
			var mu sync.Mutex
			var paths []string

			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				paths = append(paths, r.URL.Path)
				mu.Unlock()
				if r.URL.Path == "/ping" {
					w.WriteHeader(http.StatusOK)
					return
				}
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer mock.Close()

			p := prober.New(mock.URL, defaultEndpoints, 300, 5, pingStats, log)
			ok := p.PingOnce(context.Background())
			Expect(ok).To(BeTrue())

			mu.Lock()
			defer mu.Unlock()
			Expect(paths).To(Equal([]string{"/health", "/ping"}))

			snap := pingStats.Snapshot()
			Expect(snap.SuccessfulPings).To(Equal(int64(1)))
		})

		It("fails the cycle when every endpoint returns non-200", func() {
			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer mock.Close()

			p := prober.New(mock.URL, defaultEndpoints, 300, 5, pingStats, log)
			ok := p.PingOnce(context.Background())
			Expect(ok).To(BeFalse())

			snap := pingStats.Snapshot()
			Expect(snap.TotalPings).To(Equal(int64(1)))
			Expect(snap.FailedPings).To(Equal(int64(1)))
			Expect(snap.ConsecutiveFailures).To(Equal(1))
			Expect(snap.UptimePercentage).To(Equal(0.0))
		})

		It("absorbs connection failures and keeps probing", func() {
			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			unreachable := mock.URL
			mock.Close()

			p := prober.New(unreachable, defaultEndpoints, 300, 5, pingStats, log)
			ok := p.PingOnce(context.Background())
			Expect(ok).To(BeFalse())

			snap := pingStats.Snapshot()
			Expect(snap.TotalPings).To(Equal(int64(1)))
			Expect(snap.FailedPings).To(Equal(int64(1)))
		})

		It("treats a timed-out endpoint as failed and tries the next one", func() {
			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/health" {
					time.Sleep(1500 * time.Millisecond)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer mock.Close()

			p := prober.New(mock.URL, defaultEndpoints, 300, 1, pingStats, log)
			ok := p.PingOnce(context.Background())
			Expect(ok).To(BeTrue())

			snap := pingStats.Snapshot()
			Expect(snap.SuccessfulPings).To(Equal(int64(1)))
			Expect(snap.ConsecutiveFailures).To(Equal(0))
		})

		It("counts each cycle exactly once regardless of endpoint attempts", func() {
			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer mock.Close()

			p := prober.New(mock.URL, defaultEndpoints, 300, 5, pingStats, log)
			p.PingOnce(context.Background())
			p.PingOnce(context.Background())

			snap := pingStats.Snapshot()
			Expect(snap.TotalPings).To(Equal(int64(2)))
		})
	})

	Describe("NextSleep", func() {
		var failing *httptest.Server

		BeforeEach(func() {
			failing = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
		})

		AfterEach(func() {
			failing.Close()
		})

		It("uses the full interval below the failure threshold", func() {
			p := prober.New(failing.URL, defaultEndpoints, 300, 5, pingStats, log)

			p.PingOnce(context.Background())
			p.PingOnce(context.Background())
			Expect(pingStats.ConsecutiveFailures()).To(Equal(2))
			Expect(p.NextSleep()).To(Equal(300 * time.Second))
		})

		It("halves the interval once three consecutive cycles fail", func() {
			p := prober.New(failing.URL, defaultEndpoints, 300, 5, pingStats, log)

			for i := 0; i < 3; i++ {
				p.PingOnce(context.Background())
			}
			Expect(pingStats.ConsecutiveFailures()).To(Equal(3))
			Expect(pingStats.Snapshot().UptimePercentage).To(Equal(0.0))
			Expect(p.NextSleep()).To(Equal(150 * time.Second))
		})

		It("floors the halved interval to whole seconds", func() {
			p := prober.New(failing.URL, defaultEndpoints, 301, 5, pingStats, log)

			for i := 0; i < 3; i++ {
				p.PingOnce(context.Background())
			}
			Expect(p.NextSleep()).To(Equal(150 * time.Second))
		})

		It("returns to the full interval after a success", func() {
			var healthy bool
			var mu sync.Mutex

			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				ok := healthy
				mu.Unlock()
				if ok {
					w.WriteHeader(http.StatusOK)
					return
				}
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer mock.Close()

			p := prober.New(mock.URL, defaultEndpoints, 300, 5, pingStats, log)

			for i := 0; i < 3; i++ {
				p.PingOnce(context.Background())
			}
			Expect(p.NextSleep()).To(Equal(150 * time.Second))

			mu.Lock()
			healthy = true
			mu.Unlock()

			p.PingOnce(context.Background())
			Expect(pingStats.ConsecutiveFailures()).To(Equal(0))
			Expect(p.NextSleep()).To(Equal(300 * time.Second))
		})
	})

	Describe("Run", func() {
		It("runs cycles until the context is cancelled", func() {
			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer mock.Close()

			ctx, cancel := context.WithCancel(context.Background())
			p := prober.New(mock.URL, defaultEndpoints, 1, 5, pingStats, log)

			done := make(chan struct{})
			go func() {
				p.Run(ctx)
				close(done)
			}()

			Eventually(func() int64 {
				return pingStats.TotalPings()
			}, 2*time.Second, 50*time.Millisecond).Should(BeNumerically(">=", int64(1)))

			cancel()
			Eventually(done, 2*time.Second).Should(BeClosed())
		})

		It("stops promptly while sleeping between cycles", func() {
			mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer mock.Close()

			ctx, cancel := context.WithCancel(context.Background())
			p := prober.New(mock.URL, defaultEndpoints, 300, 5, pingStats, log)

			done := make(chan struct{})
			go func() {
				p.Run(ctx)
				close(done)
			}()

			Eventually(func() int64 {
				return pingStats.TotalPings()
			}, 2*time.Second, 50*time.Millisecond).Should(Equal(int64(1)))

			cancel()
			Eventually(done, 2*time.Second).Should(BeClosed())
		})
	})
})
