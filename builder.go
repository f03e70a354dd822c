package goKeyless

import (
	"errors"
	"time"

	internalaudit "github.com/kaeso/goKeyless/internal/audit"
	internalmetrics "github.com/kaeso/goKeyless/internal/metrics"
	"github.com/kaeso/goKeyless/keys"
	"github.com/kaeso/goKeyless/protocol"
	"github.com/kaeso/goKeyless/session"
	"github.com/kaeso/goKeyless/store"
)

// Builder defines a public type used by goKeyless APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	secureStore SecureStore
	keyStore    KeyStore
	transport   Transport
	auditSink   AuditSink
	now         func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New performs no I/O; the returned Builder only records configuration until
// [Builder.Build] is called.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a deep copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecureStore injects the at-rest-encrypted storage backend. When
// omitted, Build falls back to the in-memory store, which does not survive
// process restarts and is intended for development and tests only.
func (b *Builder) WithSecureStore(s SecureStore) *Builder {
	b.secureStore = s
	return b
}

// WithKeyStore injects the platform key capability. When omitted, Build
// derives signing keys from material held in the secure store via
// [keys.NewDerivedStore].
func (b *Builder) WithKeyStore(ks KeyStore) *Builder {
	b.keyStore = ks
	return b
}

// WithTransport injects the HTTP execution layer used by the protocol
// adapter. When omitted, Build uses [protocol.NewHTTPTransport] with
// default timeouts.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithAuditSink injects the sink that receives audit events and enables
// audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles the in-process metrics registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithNow overrides the engine's time source. Test hook; production builds
// use [time.Now].
func (b *Builder) WithNow(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration, wires the component graph, and returns
// a ready Engine. A Builder may be used at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	secureStore := b.secureStore
	if secureStore == nil {
		secureStore = store.NewMemory()
	}

	keyStore := b.keyStore
	if keyStore == nil {
		keyStore = keys.NewDerivedStore(secureStore)
	}

	transport := b.transport
	if transport == nil {
		transport = protocol.NewHTTPTransport(nil)
	}

	adapter, err := buildAdapter(b.config, transport)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      b.config,
		secureStore: secureStore,
		keyStore:    keyStore,
		adapter:     adapter,
		credentials: newCredentialStore(secureStore),
		otp:         newOtpChallengeStore(secureStore, now),
		webLogins:   newWebLoginStore(now),
		sessions:    session.NewManager(secureStore, b.config.Session.ClockSkew, now),
		now:         now,
		inflight:    make(map[string]struct{}),
	}

	if b.config.Audit.Enabled {
		engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.auditSink)
	}
	if b.config.Metrics.Enabled {
		engine.metrics = internalmetrics.New(internalmetrics.Config{
			Enabled:       true,
			EnableLatency: b.config.Metrics.EnableLatencyHistograms,
		})
	}

	b.built = true
	return engine, nil
}

func buildAdapter(cfg Config, transport Transport) (protocol.Adapter, error) {
	switch cfg.Protocol.Generation {
	case protocol.GenerationLegacy:
		return protocol.NewLegacyAdapter(protocol.LegacyConfig{
			Host:   cfg.API.Host,
			APIKey: cfg.API.APIKey,
		}, transport), nil
	case protocol.GenerationOAuth:
		return protocol.NewOAuthAdapter(protocol.OAuthAdapterConfig{
			Host:            cfg.API.Host,
			APIKey:          cfg.API.APIKey,
			TokenEndpoint:   cfg.OAuth.TokenEndpoint,
			ClientID:        cfg.OAuth.ClientID,
			ServerPublicKey: cfg.OAuth.ServerPublicKey,
		}, transport)
	default:
		return nil, errors.New("unknown protocol generation")
	}
}
