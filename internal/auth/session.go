package auth

import "github.com/barisbulutdemir/ermakRaporlama/internal/utils"

// ParseSession verifies a raw token string and returns the session it
// carries. The claims are taken at face value; nothing is re-read from
// the user store here.
func ParseSession(secret, raw string) (*Session, error) {
	id, username, role, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: id, Username: username, Role: role}, nil
}
