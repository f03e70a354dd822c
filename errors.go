package goKeyless

import "errors"

var (
	// ErrNetwork is an exported constant or variable used by the authentication engine.
	ErrNetwork = errors.New("network failure")
	// ErrOtpMismatch is an exported constant or variable used by the authentication engine.
	ErrOtpMismatch = errors.New("otp code mismatch")
	// ErrOtpExpired is an exported constant or variable used by the authentication engine.
	ErrOtpExpired = errors.New("otp challenge expired")
	// ErrOtpExhausted is an exported constant or variable used by the authentication engine.
	ErrOtpExhausted = errors.New("otp attempts exhausted")
	// ErrDeviceVerificationFailed is an exported constant or variable used by the authentication engine.
	ErrDeviceVerificationFailed = errors.New("device verification failed")
	// ErrCrypto is an exported constant or variable used by the authentication engine.
	ErrCrypto = errors.New("key generation or signing failure")
	// ErrCredentialStore is an exported constant or variable used by the authentication engine.
	ErrCredentialStore = errors.New("credential store failure")
	// ErrSessionExpired is an exported constant or variable used by the authentication engine.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionNotFound is an exported constant or variable used by the authentication engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInternalState is an exported constant or variable used by the authentication engine.
	ErrInternalState = errors.New("invalid call for current state")
	// ErrWebLoginExpired is an exported constant or variable used by the authentication engine.
	ErrWebLoginExpired = errors.New("web login request expired")
	// ErrWebLoginAlreadyApproved is an exported constant or variable used by the authentication engine.
	ErrWebLoginAlreadyApproved = errors.New("web login request already approved")
	// ErrWebLoginRejected is an exported constant or variable used by the authentication engine.
	ErrWebLoginRejected = errors.New("web login request rejected")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
