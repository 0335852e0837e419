// Package mqttpaho is a reference ackq.Publisher backed by a real MQTT
// broker connection. It is a demonstration/integration artifact: the
// core never imports it, only the other way around.
package mqttpaho

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/brinkedge/ackq"
)

// Config configures the adapter's broker connection.
type Config struct {
	BrokerURL      string
	ClientID       string // generated from uuid if empty
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

func (c *Config) normalize() {
	if c.ClientID == "" {
		c.ClientID = "ackq-" + uuid.NewString()
	}
	if c.KeepAlive == 0 {
		c.KeepAlive = 30 * time.Second
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = 2 * time.Second
	}
}

// pahoClient is the slice of mqtt.Client the adapter actually calls.
// Narrowing it lets tests substitute a fake without implementing
// Paho's full Client interface (Subscribe, AddRoute, and so on).
type pahoClient interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
}

// Adapter implements ackq.Publisher over github.com/eclipse/paho.mqtt.golang.
// Since Paho does not surface the broker-assigned packet identifier
// through its public Token API, the adapter synthesizes its own
// monotonically increasing msg_id on successful publish; the core
// treats transport ids as opaque, so this is within contract.
type Adapter struct {
	cfg    Config
	client pahoClient

	mu        sync.RWMutex
	published map[string]uint64
	errors    uint64
	connected bool

	nextID atomic.Int64
}

var _ ackq.Publisher = (*Adapter)(nil)

// New constructs an Adapter. Call Connect before using it as a
// Publisher.
func New(cfg Config) *Adapter {
	cfg.normalize()
	return &Adapter{cfg: cfg, published: make(map[string]uint64)}
}

// Connect dials the broker, retrying with exponential backoff on
// failure.
func (a *Adapter) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(a.cfg.BrokerURL)
	opts.SetClientID(a.cfg.ClientID)
	opts.SetKeepAlive(a.cfg.KeepAlive)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		a.setConnected(true)
		slog.Info("ackq/mqttpaho: connection established",
			"broker", a.cfg.BrokerURL, "client_id", a.cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		a.setConnected(false)
		slog.Warn("ackq/mqttpaho: connection lost, will auto-reconnect",
			"error", err, "broker", a.cfg.BrokerURL)
	}

	a.client = mqtt.NewClient(opts)

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = 1 * time.Minute
	expBackoff.InitialInterval = a.cfg.ConnectTimeout

	operation := func() error {
		token := a.client.Connect()
		if !token.WaitTimeout(a.cfg.ConnectTimeout) {
			return fmt.Errorf("ackq/mqttpaho: connect timeout")
		}
		if err := token.Error(); err != nil {
			slog.Warn("ackq/mqttpaho: connect failed, will retry", "error", err)
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, expBackoff); err != nil {
		return fmt.Errorf("ackq/mqttpaho: connect after retries: %w", err)
	}
	a.setConnected(true)
	return nil
}

// Publish satisfies ackq.Publisher. It returns a negative id on any
// failure to publish or acknowledge the Paho token within
// PublishTimeout, which the Facade maps to its own -1 failure path.
func (a *Adapter) Publish(ctx context.Context, topic string, payload []byte, qos int, retain bool) (int, error) {
	if !a.isConnected() {
		a.bumpErrors()
		return -1, fmt.Errorf("ackq/mqttpaho: not connected")
	}

	token := a.client.Publish(topic, byte(qos), retain, payload)
	done := make(chan struct{})
	var completed bool
	go func() {
		completed = token.WaitTimeout(a.cfg.PublishTimeout)
		close(done)
	}()
	select {
	case <-ctx.Done():
		a.bumpErrors()
		return -1, ctx.Err()
	case <-done:
	}

	if !completed {
		a.bumpErrors()
		return -1, fmt.Errorf("ackq/mqttpaho: publish timeout")
	}

	if err := token.Error(); err != nil {
		a.bumpErrors()
		return -1, fmt.Errorf("ackq/mqttpaho: publish failed: %w", err)
	}

	a.mu.Lock()
	a.published[topic]++
	a.mu.Unlock()

	id := a.nextID.Add(1)
	slog.Debug("ackq/mqttpaho: published", "topic", topic, "qos", qos, "size", len(payload), "msg_id", id)
	return int(id), nil
}

// Disconnect closes the broker connection with a short grace period.
func (a *Adapter) Disconnect() {
	if a.client != nil && a.client.IsConnected() {
		a.client.Disconnect(250)
		slog.Info("ackq/mqttpaho: disconnected")
	}
	a.setConnected(false)
}

// Stats reports per-topic publish counts and the running error count.
type Stats struct {
	Connected bool
	Published map[string]uint64
	Errors    uint64
}

func (a *Adapter) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	published := make(map[string]uint64, len(a.published))
	for k, v := range a.published {
		published[k] = v
	}
	return Stats{Connected: a.connected, Published: published, Errors: a.errors}
}

func (a *Adapter) setConnected(v bool) {
	a.mu.Lock()
	a.connected = v
	a.mu.Unlock()
}

func (a *Adapter) isConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected
}

func (a *Adapter) bumpErrors() {
	a.mu.Lock()
	a.errors++
	a.mu.Unlock()
}
