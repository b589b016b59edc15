package auth

import (
	"testing"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/utils"
)

func mustToken(t *testing.T, secret string, u *model.User) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, u, 15)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	return tok.Token
}
