package goKeyless

import (
	"errors"
	"strings"
	"time"

	"github.com/kaeso/goKeyless/protocol"
)

// Config defines a public type used by goKeyless APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API      APIConfig
	Protocol ProtocolConfig
	OAuth    OAuthConfig
	Otp      OtpConfig
	Session  SessionConfig
	WebLogin WebLoginConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig identifies the tenant deployment the engine talks to. Host is
// the tenant-specific base URL; well-known endpoint suffixes (/hc_auth,
// /hc_reg, /ha_login) hang off it.
type APIConfig struct {
	Host   string
	APIKey string
}

// ProtocolConfig selects the wire-protocol generation. The choice is
// exclusive per engine instance and made once at [Builder.Build]; the
// engine never inspects it again after construction.
type ProtocolConfig struct {
	Generation Generation
	// Version is recorded into every provisioned DeviceCredential so a
	// later generation can recognize material minted by an earlier one.
	Version uint8
}

// OAuthConfig carries the extra endpoints and key material required by
// [GenerationOAuth]. Ignored by [GenerationLegacy].
type OAuthConfig struct {
	TokenEndpoint string
	ClientID      string
	// ServerPublicKey is the raw Ed25519 public key access tokens are
	// verified against before a session is accepted.
	ServerPublicKey []byte
}

/*
====================================
FLOW CONFIG
====================================
*/

// OtpConfig bounds the out-of-band verification step.
type OtpConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

// SessionConfig defines a public type used by goKeyless APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// ClockSkew is subtracted from a session's expiry when deciding
	// whether it must be refreshed before use.
	ClockSkew time.Duration
	// AutoRefresh lets CurrentSession transparently refresh an expired
	// session instead of failing with ErrSessionExpired.
	AutoRefresh bool
}

// WebLoginConfig bounds the cross-device PIN approval handshake.
type WebLoginConfig struct {
	TTL time.Duration
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// AuditConfig defines a public type used by goKeyless APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goKeyless APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration. API.Host and API.APIKey
// must still be filled in before [Builder.Build] accepts it.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Protocol: ProtocolConfig{
			Generation: protocol.GenerationLegacy,
			Version:    1,
		},
		Otp: OtpConfig{
			TTL:         5 * time.Minute,
			MaxAttempts: 5,
		},
		Session: SessionConfig{
			ClockSkew:   30 * time.Second,
			AutoRefresh: true,
		},
		WebLogin: WebLoginConfig{
			TTL: 2 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.OAuth.ServerPublicKey != nil {
		out.OAuth.ServerPublicKey = append([]byte(nil), cfg.OAuth.ServerPublicKey...)
	}
	return out
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.API.Host) == "" {
		return errors.New("api host is required")
	}
	if strings.TrimSpace(cfg.API.APIKey) == "" {
		return errors.New("api key is required")
	}
	if cfg.Otp.TTL <= 0 {
		return errors.New("otp ttl must be positive")
	}
	if cfg.Otp.MaxAttempts <= 0 {
		return errors.New("otp max attempts must be positive")
	}
	if cfg.Session.ClockSkew < 0 {
		return errors.New("session clock skew must not be negative")
	}
	if cfg.WebLogin.TTL <= 0 {
		return errors.New("web login ttl must be positive")
	}

	switch cfg.Protocol.Generation {
	case protocol.GenerationLegacy:
	case protocol.GenerationOAuth:
		if strings.TrimSpace(cfg.OAuth.TokenEndpoint) == "" {
			return errors.New("oauth token endpoint is required")
		}
		if strings.TrimSpace(cfg.OAuth.ClientID) == "" {
			return errors.New("oauth client id is required")
		}
		if len(cfg.OAuth.ServerPublicKey) == 0 {
			return errors.New("oauth server public key is required")
		}
	default:
		return errors.New("unknown protocol generation")
	}

	return nil
}
