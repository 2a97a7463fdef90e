// Package config holds the engine's configuration surface (spec.md §6)
// and loads it with viper, in the shape of the teacher's config.Config +
// config.GetConfig(v *viper.Viper) pattern, scoped to the handful of
// constants the Xtx engine actually needs.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"

	"github.com/t3rn/circuit/ids"
)

// Keys used both as viper flag/env names and as defaults-map keys.
const (
	KeySelfAccountID           = "self-account-id"
	KeySelfGatewayID           = "self-gateway-id"
	KeySelfParaID              = "self-para-id"
	KeyXtxTimeoutDefault       = "xtx-timeout-default"
	KeyXtxTimeoutCheckInterval = "xtx-timeout-check-interval"
	KeyDeletionQueueLimit      = "deletion-queue-limit"
	KeySignalQueueDepth        = "signal-queue-depth"
	KeyStoreCacheSize          = "store-cache-size"
	KeyHTTPAddr                = "http-addr"
)

// Config is the Circuit engine's configuration surface, spec.md §6.
type Config struct {
	SelfAccountID string
	SelfGatewayID ids.GatewayId

	SelfParaID uint32

	// XtxTimeoutDefault is the number of blocks after admission an Xtx is
	// allowed to run before the timeout sweep reverts it.
	XtxTimeoutDefault uint64

	// XtxTimeoutCheckInterval is the block-number modulus at which the
	// timeout sweep scans ActiveXExecSignalsTimingLinks.
	XtxTimeoutCheckInterval uint64

	// DeletionQueueLimit is loaded by Load but the engine does not read
	// it; SweepTimeouts reverts at most one Xtx per call.
	DeletionQueueLimit uint32

	// SignalQueueDepth bounds the signal FIFO.
	SignalQueueDepth uint32

	// StoreCacheSize is ambient tuning, not in spec.md itself, added because
	// every store in the teacher's state package is fronted by a sized
	// cache. The in-memory store has no cache and does not read it.
	StoreCacheSize int

	// HTTPAddr is the bind address for the JSON-RPC + health API.
	HTTPAddr string
}

var (
	ErrMissingSelfAccountID = errors.New("config: self-account-id is required")
	ErrZeroSignalQueueDepth = errors.New("config: signal-queue-depth must be > 0")
	ErrZeroTimeoutInterval  = errors.New("config: xtx-timeout-check-interval must be > 0")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySelfParaID, uint32(0))
	v.SetDefault(KeyXtxTimeoutDefault, uint64(400))
	v.SetDefault(KeyXtxTimeoutCheckInterval, uint64(10))
	v.SetDefault(KeyDeletionQueueLimit, uint32(100))
	v.SetDefault(KeySignalQueueDepth, uint32(1000))
	v.SetDefault(KeyStoreCacheSize, 2048)
	v.SetDefault(KeyHTTPAddr, ":9650")
}

// Load reads a Config out of v, applying defaults for anything unset and
// validating the required fields, mirroring the teacher's
// config.getConfig flow (defaults first, then overrides, then validate).
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	selfAccountID := v.GetString(KeySelfAccountID)
	if selfAccountID == "" {
		return Config{}, ErrMissingSelfAccountID
	}

	var gw ids.GatewayId
	rawGateway := v.GetString(KeySelfGatewayID)
	copy(gw[:], rawGateway)

	cfg := Config{
		SelfAccountID:           selfAccountID,
		SelfGatewayID:           gw,
		SelfParaID:              v.GetUint32(KeySelfParaID),
		XtxTimeoutDefault:       v.GetUint64(KeyXtxTimeoutDefault),
		XtxTimeoutCheckInterval: v.GetUint64(KeyXtxTimeoutCheckInterval),
		DeletionQueueLimit:      v.GetUint32(KeyDeletionQueueLimit),
		SignalQueueDepth:        v.GetUint32(KeySignalQueueDepth),
		StoreCacheSize:          v.GetInt(KeyStoreCacheSize),
		HTTPAddr:                v.GetString(KeyHTTPAddr),
	}
	if cfg.SignalQueueDepth == 0 {
		return Config{}, ErrZeroSignalQueueDepth
	}
	if cfg.XtxTimeoutCheckInterval == 0 {
		return Config{}, ErrZeroTimeoutInterval
	}
	return cfg, nil
}

// DefaultXtxTimeoutDuration is a convenience conversion for hosts that want
// to reason about the default timeout in wall-clock terms assuming a fixed
// block period; the engine itself only ever compares block numbers.
func DefaultXtxTimeoutDuration(cfg Config, blockPeriod time.Duration) time.Duration {
	return time.Duration(cfg.XtxTimeoutDefault) * blockPeriod
}
