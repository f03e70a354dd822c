package session

// Session is the persisted authentication session for one user on this
// device. Timestamps are Unix seconds.
type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	IssuedAt     int64
	ExpiresAt    int64
}
