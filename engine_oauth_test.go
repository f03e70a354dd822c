package goKeyless

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func oauthTestConfig(gw *fakeGateway) Config {
	cfg := testConfig()
	cfg.Protocol.Generation = GenerationOAuth
	cfg.Protocol.Version = 2
	cfg.OAuth.TokenEndpoint = "https://tenant.example.com/oauth/token"
	cfg.OAuth.ClientID = "gokeyless-device"
	cfg.OAuth.ServerPublicKey = gw.serverKey
	return cfg
}

func newOAuthEngine(t *testing.T) (*Engine, *fakeGateway) {
	t.Helper()

	gw := newFakeGateway(testOtpCode)
	engine, err := New().
		WithConfig(oauthTestConfig(gw)).
		WithTransport(gw).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, gw
}

func TestOAuthRegistrationAndLogin(t *testing.T) {
	engine, gw := newOAuthEngine(t)

	result := provisionDevice(t, engine, "alice@example.com")

	// Access tokens from the token endpoint are JWTs signed with the
	// server key, not opaque strings.
	parsed, err := jwt.Parse(result.Tokens.AccessToken, func(*jwt.Token) (any, error) {
		return gw.serverKey, nil
	}, jwt.WithValidMethods([]string{"EdDSA"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("access token failed verification: %v", err)
	}
	if sub, _ := parsed.Claims.GetSubject(); sub != "alice@example.com" {
		t.Fatalf("unexpected subject claim %q", sub)
	}

	cred, err := engine.credentials.Get(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cred.ProtocolVersion != 2 {
		t.Fatalf("expected credential stamped with protocol version 2, got %d", cred.ProtocolVersion)
	}
}

func TestOAuthSessionExpiryComesFromClaim(t *testing.T) {
	engine, _ := newOAuthEngine(t)

	provisionDevice(t, engine, "alice@example.com")

	info, err := engine.CurrentSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	remaining := time.Until(info.ExpiresAt)
	if remaining < 55*time.Minute || remaining > 65*time.Minute {
		t.Fatalf("expected expiry near the exp claim (1h), got %v", remaining)
	}
}

func TestOAuthRefreshRotatesTokens(t *testing.T) {
	engine, _ := newOAuthEngine(t)

	first := provisionDevice(t, engine, "alice@example.com")

	refreshed, err := engine.RefreshSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RefreshSession failed: %v", err)
	}
	if refreshed.AccessToken == first.Tokens.AccessToken {
		t.Fatal("expected refresh to mint a new access token")
	}

	// Rotation persisted: a second refresh still works.
	if _, err := engine.RefreshSession(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("second RefreshSession failed: %v", err)
	}
}

func TestOAuthRejectsTokensSignedByWrongKey(t *testing.T) {
	gw := newFakeGateway(testOtpCode)
	wrongKey, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	cfg := oauthTestConfig(gw)
	cfg.OAuth.ServerPublicKey = wrongKey

	engine, err := New().WithConfig(cfg).WithTransport(gw).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	startRegistration(t, engine, "alice@example.com")
	if _, err := engine.SubmitOtp(context.Background(), "alice@example.com", testOtpCode); !errors.Is(err, ErrDeviceVerificationFailed) {
		t.Fatalf("expected ErrDeviceVerificationFailed for forged token, got %v", err)
	}

	// The failed auto-login must not leave a session behind.
	if _, err := engine.CurrentSession(context.Background(), "alice@example.com"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestOAuthGrantRejectionSurfacesDeviceVerification(t *testing.T) {
	engine, gw := newOAuthEngine(t)

	provisionDevice(t, engine, "alice@example.com")

	gw.rejectLogin = true
	if _, err := engine.Authenticate(context.Background(), "alice@example.com"); !errors.Is(err, ErrDeviceVerificationFailed) {
		t.Fatalf("expected ErrDeviceVerificationFailed, got %v", err)
	}
}

func TestBuildRejectsMalformedServerKey(t *testing.T) {
	gw := newFakeGateway(testOtpCode)
	cfg := oauthTestConfig(gw)
	cfg.OAuth.ServerPublicKey = []byte{1, 2, 3}

	if _, err := New().WithConfig(cfg).WithTransport(gw).Build(); err == nil {
		t.Fatal("expected Build to reject a malformed server key")
	}
}
