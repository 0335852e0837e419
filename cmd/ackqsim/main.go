// Command ackqsim drives a Facade against a chosen transport for
// demonstration and manual soak testing: it paces synthetic publish
// bursts with golang.org/x/time/rate, ticks the Sweeper on a
// time.Ticker, and exports diagnostics to Prometheus and, when a
// Postgres DSN is configured, to Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	_ "go.uber.org/automaxprocs"

	"github.com/brinkedge/ackq"
	"github.com/brinkedge/ackq/config"
	"github.com/brinkedge/ackq/telemetry/pgsink"
	"github.com/brinkedge/ackq/telemetry/promexport"
	"github.com/brinkedge/ackq/transport/mqttpaho"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (queue/transport/telemetry); offline in-memory defaults are used if omitted")
	httpAddr := flag.String("http", ":9090", "address to serve /metrics on")
	publishRPS := flag.Float64("rps", 5, "synthetic publish rate, messages/second")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file := loadConfigOrDefault(ctx, *configPath)

	pub, cleanup := buildPublisher(file)
	defer cleanup()
	facade := ackq.New(file.Queue.ToAckqConfig(), pub)

	reg := prometheus.NewRegistry()
	promexport.New(reg, orDefault(file.Telemetry.PrometheusNamespace, "ackq"), facade)
	go serveMetrics(*httpAddr, reg)

	if file.Telemetry.PostgresDSN != "" {
		go runPgSink(ctx, file, facade)
	}

	go driveSweeper(ctx, facade)
	driveBurst(ctx, facade, *publishRPS)
}

func loadConfigOrDefault(ctx context.Context, path string) *config.File {
	if path == "" {
		return &config.File{}
	}
	f, err := config.Load(ctx, path)
	if err != nil {
		slog.Error("ackqsim: failed to load config, falling back to defaults", "error", err)
		return &config.File{}
	}
	return f
}

func buildPublisher(file *config.File) (ackq.Publisher, func()) {
	if file.Transport.BrokerURL == "" {
		slog.Info("ackqsim: no broker_url configured, using an in-memory publisher")
		return &inMemoryPublisher{}, func() {}
	}

	adapter := mqttpaho.New(mqttpaho.Config{
		BrokerURL:      file.Transport.BrokerURL,
		ClientID:       file.Transport.ClientIDPrefix,
		KeepAlive:      time.Duration(file.Transport.KeepAliveSeconds) * time.Second,
		ConnectTimeout: time.Duration(file.Transport.ConnectTimeoutSeconds) * time.Second,
	})
	if err := adapter.Connect(); err != nil {
		slog.Error("ackqsim: mqtt connect failed, falling back to an in-memory publisher", "error", err)
		return &inMemoryPublisher{}, func() {}
	}
	return adapter, adapter.Disconnect
}

func runPgSink(ctx context.Context, file *config.File, facade *ackq.Facade) {
	pool, err := pgxpool.New(ctx, file.Telemetry.PostgresDSN)
	if err != nil {
		slog.Error("ackqsim: postgres connect failed, diagnostics sink disabled", "error", err)
		return
	}
	defer pool.Close()

	interval := time.Duration(file.Telemetry.SnapshotIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		for err := range errCh {
			slog.Warn("ackqsim: diagnostics snapshot insert failed", "error", err)
		}
	}()

	pgsink.New(pool).Run(ctx, interval, facade.Snapshot, errCh)
}

func driveSweeper(ctx context.Context, facade *ackq.Facade) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			facade.Tick()
		}
	}
}

func driveBurst(ctx context.Context, facade *ackq.Facade, rps float64) {
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	n := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			facade.LogDiagnostics()
			return
		}
		n++
		topic := fmt.Sprintf("ackqsim/devices/%d/telemetry", n%8)
		payload := fmt.Sprintf(`{"seq":%d}`, n)
		id, err := facade.Publish(ctx, []byte(topic), []byte(payload), false)
		if err != nil {
			slog.Warn("ackqsim: publish failed", "error", err)
			continue
		}
		go ackAfter(facade, id, 10*time.Millisecond)
	}
}

// ackAfter simulates the broker's on_published callback arriving a
// short, realistic interval after publish.
func ackAfter(facade *ackq.Facade, msgID int, delay time.Duration) {
	time.Sleep(delay)
	facade.OnPublished(msgID)
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	slog.Info("ackqsim: serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("ackqsim: metrics server stopped", "error", err)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// inMemoryPublisher is the offline fallback transport: it assigns
// sequential ids and never fails, so the simulator can demonstrate the
// queue's behavior without a live broker.
type inMemoryPublisher struct {
	next int
}

func (p *inMemoryPublisher) Publish(_ context.Context, _ string, _ []byte, _ int, _ bool) (int, error) {
	p.next++
	return p.next, nil
}
