package goKeyless

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kaeso/goKeyless/protocol"
)

// fakeGateway is an in-memory tenant backend speaking the legacy wire
// shapes. It registers public keys, issues and verifies Ed25519 login
// challenges, mints opaque tokens, and runs the web approval handshake.
type fakeGateway struct {
	mu sync.Mutex

	otpCode string
	webTTL  time.Duration

	devices         map[string]ed25519.PublicKey // userID|deviceID -> public key
	knownUsers      map[string]bool
	regChallenges   map[string]regChallenge
	loginChallenges map[string]loginChallenge
	refreshTokens   map[string]string // refresh token -> userID
	webRequests     map[string]*webRequest

	failPaths   map[string]bool // path suffix -> fail with transport error
	rejectLogin bool

	// signingKey mints JWT access tokens for the token-endpoint grants.
	signingKey ed25519.PrivateKey
	serverKey  ed25519.PublicKey

	tokenSeq    int
	otpVerifies int
	refreshes   int
}

type regChallenge struct {
	userID   string
	deviceID string
}

type loginChallenge struct {
	userID   string
	deviceID string
	nonce    []byte
}

type webRequest struct {
	approved  bool
	expiresAt time.Time
}

func newFakeGateway(otpCode string) *fakeGateway {
	serverKey, signingKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return &fakeGateway{
		signingKey:      signingKey,
		serverKey:       serverKey,
		otpCode:         otpCode,
		webTTL:          2 * time.Minute,
		devices:         map[string]ed25519.PublicKey{},
		knownUsers:      map[string]bool{},
		regChallenges:   map[string]regChallenge{},
		loginChallenges: map[string]loginChallenge{},
		refreshTokens:   map[string]string{},
		webRequests:     map[string]*webRequest{},
		failPaths:       map[string]bool{},
	}
}

func (g *fakeGateway) failPath(suffix string, fail bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failPaths[suffix] = fail
}

func (g *fakeGateway) expireWebRequest(approvalToken string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if request, ok := g.webRequests[approvalToken]; ok {
		request.expiresAt = time.Now().Add(-time.Minute)
	}
}

func (g *fakeGateway) revokeAllRefreshTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshTokens = map[string]string{}
}

func (g *fakeGateway) Do(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for suffix, fail := range g.failPaths {
		if fail && strings.HasSuffix(req.URL, suffix) {
			return nil, errors.New("connection reset")
		}
	}

	if req.ContentType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(req.Body))
		if err != nil {
			return nil, fmt.Errorf("fake gateway: bad form: %w", err)
		}
		return g.handleTokenGrant(form)
	}

	var body map[string]string
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return nil, fmt.Errorf("fake gateway: bad body: %w", err)
	}

	switch {
	case strings.HasSuffix(req.URL, "/hc_reg/otp"):
		return g.handleOtp(body)
	case strings.HasSuffix(req.URL, "/hc_reg"):
		return g.handleRegister(body)
	case strings.HasSuffix(req.URL, "/hc_auth/refresh"):
		return g.handleRefresh(body)
	case strings.HasSuffix(req.URL, "/hc_auth/web/approve"):
		return g.handleWebApprove(body)
	case strings.HasSuffix(req.URL, "/hc_auth/web"):
		return g.handleWebPin(body)
	case strings.HasSuffix(req.URL, "/hc_auth"):
		return g.handleChallenge(body)
	case strings.HasSuffix(req.URL, "/ha_login"):
		return g.handleLogin(body)
	default:
		return jsonResponse(http.StatusNotFound, map[string]any{"error": "unknown_endpoint"})
	}
}

func (g *fakeGateway) handleRegister(body map[string]string) (*protocol.Response, error) {
	userID := body["user_id"]
	challengeID := fmt.Sprintf("reg-%d", g.nextSeq())
	g.regChallenges[challengeID] = regChallenge{
		userID:   userID,
		deviceID: body["device_id"],
	}
	existing := g.knownUsers[userID]
	g.knownUsers[userID] = true
	return jsonResponse(http.StatusOK, map[string]any{
		"challenge_id":  challengeID,
		"otp_required":  true,
		"existing_user": existing,
	})
}

func (g *fakeGateway) handleOtp(body map[string]string) (*protocol.Response, error) {
	g.otpVerifies++

	challenge, ok := g.regChallenges[body["challenge_id"]]
	if !ok {
		return jsonResponse(http.StatusNotFound, map[string]any{"error": "unknown_challenge"})
	}
	if body["code"] != g.otpCode {
		return jsonResponse(http.StatusOK, map[string]any{"verified": false})
	}

	publicKey, err := base64.StdEncoding.DecodeString(body["public_key"])
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return jsonResponse(http.StatusBadRequest, map[string]any{"error": "bad_public_key"})
	}

	g.devices[challenge.userID+"|"+challenge.deviceID] = ed25519.PublicKey(publicKey)
	delete(g.regChallenges, body["challenge_id"])
	return jsonResponse(http.StatusOK, map[string]any{"verified": true})
}

func (g *fakeGateway) handleChallenge(body map[string]string) (*protocol.Response, error) {
	key := body["user_id"] + "|" + body["device_id"]
	if _, ok := g.devices[key]; !ok {
		return jsonResponse(http.StatusNotFound, map[string]any{"error": "unknown_device"})
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	challengeID := fmt.Sprintf("chal-%d", g.nextSeq())
	g.loginChallenges[challengeID] = loginChallenge{
		userID:   body["user_id"],
		deviceID: body["device_id"],
		nonce:    nonce,
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"challenge_id": challengeID,
		"nonce":        base64.StdEncoding.EncodeToString(nonce),
	})
}

func (g *fakeGateway) handleLogin(body map[string]string) (*protocol.Response, error) {
	challenge, ok := g.loginChallenges[body["challenge_id"]]
	if !ok {
		return jsonResponse(http.StatusNotFound, map[string]any{"error": "unknown_challenge"})
	}
	delete(g.loginChallenges, body["challenge_id"])

	if g.rejectLogin {
		return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "signature_rejected"})
	}

	signature, err := base64.StdEncoding.DecodeString(body["signature"])
	if err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]any{"error": "bad_signature"})
	}
	publicKey := g.devices[challenge.userID+"|"+challenge.deviceID]
	if !ed25519.Verify(publicKey, challenge.nonce, signature) {
		return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "signature_rejected"})
	}

	return g.mintTokens(challenge.userID)
}

func (g *fakeGateway) handleRefresh(body map[string]string) (*protocol.Response, error) {
	g.refreshes++

	userID, ok := g.refreshTokens[body["refresh_token"]]
	if !ok {
		return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "invalid_refresh_token"})
	}
	delete(g.refreshTokens, body["refresh_token"])
	return g.mintTokens(userID)
}

func (g *fakeGateway) handleWebPin(body map[string]string) (*protocol.Response, error) {
	if len(body["pin"]) < 6 {
		return jsonResponse(http.StatusBadRequest, map[string]any{"error": "bad_pin"})
	}
	token := fmt.Sprintf("wa-%d", g.nextSeq())
	g.webRequests[token] = &webRequest{expiresAt: time.Now().Add(g.webTTL)}
	return jsonResponse(http.StatusOK, map[string]any{
		"approval_token": token,
		"expires_in":     int64(g.webTTL / time.Second),
	})
}

func (g *fakeGateway) handleWebApprove(body map[string]string) (*protocol.Response, error) {
	request, ok := g.webRequests[body["approval_token"]]
	if !ok {
		return jsonResponse(http.StatusNotFound, map[string]any{"error": "unknown_approval_token"})
	}
	if request.approved {
		return jsonResponse(http.StatusConflict, map[string]any{"error": "already_approved"})
	}
	if time.Now().After(request.expiresAt) {
		return jsonResponse(http.StatusGone, map[string]any{"error": "expired"})
	}
	if body["access_token"] == "" {
		return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "unauthenticated"})
	}
	request.approved = true
	return jsonResponse(http.StatusOK, map[string]any{"approved": true})
}

func (g *fakeGateway) handleTokenGrant(form url.Values) (*protocol.Response, error) {
	if form.Get("client_id") == "" {
		return jsonResponse(http.StatusBadRequest, map[string]any{"error": "invalid_client"})
	}

	switch form.Get("grant_type") {
	case "device_signature":
		challenge, ok := g.loginChallenges[form.Get("challenge_id")]
		if !ok {
			return jsonResponse(http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		}
		delete(g.loginChallenges, form.Get("challenge_id"))

		if g.rejectLogin {
			return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "invalid_grant"})
		}
		signature, err := base64.RawURLEncoding.DecodeString(form.Get("signature"))
		if err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		}
		publicKey := g.devices[challenge.userID+"|"+challenge.deviceID]
		if !ed25519.Verify(publicKey, challenge.nonce, signature) {
			return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "invalid_grant"})
		}
		return g.mintJWTTokens(challenge.userID)

	case "refresh_token":
		g.refreshes++
		userID, ok := g.refreshTokens[form.Get("refresh_token")]
		if !ok {
			return jsonResponse(http.StatusUnauthorized, map[string]any{"error": "invalid_grant"})
		}
		delete(g.refreshTokens, form.Get("refresh_token"))
		return g.mintJWTTokens(userID)

	default:
		return jsonResponse(http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
	}
}

func (g *fakeGateway) mintJWTTokens(userID string) (*protocol.Response, error) {
	now := time.Now()
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
		"jti": fmt.Sprintf("jwt-%d", g.nextSeq()),
	}).SignedString(g.signingKey)
	if err != nil {
		return nil, err
	}

	refreshToken := fmt.Sprintf("rt-%s-%d", userID, g.nextSeq())
	g.refreshTokens[refreshToken] = userID
	return jsonResponse(http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
		"expires_in":    int64(3600),
	})
}

func (g *fakeGateway) mintTokens(userID string) (*protocol.Response, error) {
	seq := g.nextSeq()
	accessToken := fmt.Sprintf("at-%s-%d", userID, seq)
	refreshToken := fmt.Sprintf("rt-%s-%d", userID, seq)
	g.refreshTokens[refreshToken] = userID
	return jsonResponse(http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int64(3600),
	})
}

func (g *fakeGateway) nextSeq() int {
	g.tokenSeq++
	return g.tokenSeq
}

func jsonResponse(status int, payload map[string]any) (*protocol.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &protocol.Response{StatusCode: status, Body: body}, nil
}
