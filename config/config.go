// Package config loads the on-disk shape that wires an ackq.Config
// together with the transport and telemetry settings the ambient
// stack needs, following the pack's FileLoader.Load pattern.
package config

import (
	"time"

	"github.com/brinkedge/ackq"
)

// QueueConfig mirrors ackq.Config's tunables directly, in milliseconds,
// since yaml.v3 has no built-in time.Duration codec and the underlying
// constants are themselves named with an _MS suffix.
type QueueConfig struct {
	StaticSlotCount       int `yaml:"static_slot_count"`
	DynamicSlotCount      int `yaml:"dynamic_slot_count"`
	MaxDynamicBlocks      int `yaml:"max_dynamic_blocks"`
	PayloadMax            int `yaml:"payload_max"`
	TopicMax              int `yaml:"topic_max"`
	AckTimeoutMS          int `yaml:"ack_timeout_ms"`
	DynBlockIdleTimeoutMS int `yaml:"dyn_block_idle_timeout_ms"`
	ControlRingCap        int `yaml:"control_ring_cap"`
	ControlTimeoutMS      int `yaml:"control_timeout_ms"`
}

// ToAckqConfig converts the on-disk millisecond fields to an
// ackq.Config and normalizes any field left at its zero value.
func (q QueueConfig) ToAckqConfig() ackq.Config {
	cfg := ackq.Config{
		StaticSlotCount:     q.StaticSlotCount,
		DynamicSlotCount:    q.DynamicSlotCount,
		MaxDynamicBlocks:    q.MaxDynamicBlocks,
		PayloadMax:          q.PayloadMax,
		TopicMax:            q.TopicMax,
		AckTimeout:          time.Duration(q.AckTimeoutMS) * time.Millisecond,
		DynBlockIdleTimeout: time.Duration(q.DynBlockIdleTimeoutMS) * time.Millisecond,
		ControlRingCap:      q.ControlRingCap,
		ControlTimeout:      time.Duration(q.ControlTimeoutMS) * time.Millisecond,
	}
	cfg.Normalize()
	return cfg
}

// TransportConfig configures the MQTT adapter in transport/mqttpaho.
type TransportConfig struct {
	BrokerURL             string `yaml:"broker_url"`
	ClientIDPrefix        string `yaml:"client_id_prefix"`
	KeepAliveSeconds      int    `yaml:"keep_alive_seconds"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
}

// TelemetryConfig configures the diagnostics exporters.
type TelemetryConfig struct {
	PostgresDSN             string `yaml:"postgres_dsn"`
	SnapshotIntervalSeconds int    `yaml:"snapshot_interval_seconds"`
	PrometheusNamespace     string `yaml:"prometheus_namespace"`
}

// File is the top-level YAML document shape.
type File struct {
	Queue     QueueConfig     `yaml:"queue"`
	Transport TransportConfig `yaml:"transport"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}
