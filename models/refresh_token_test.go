package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenState(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	replacedBy := "new-token-id"

	cases := []struct {
		name  string
		token RefreshToken
		want  TokenState
	}{
		{
			"active",
			RefreshToken{ExpiresAt: future},
			TokenStateActive,
		},
		{
			"expired",
			RefreshToken{ExpiresAt: past},
			TokenStateExpired,
		},
		{
			"revoked",
			RefreshToken{ExpiresAt: future, IsRevoked: true},
			TokenStateRevoked,
		},
		{
			"rotated",
			RefreshToken{ExpiresAt: future, IsRevoked: true, ReplacedByID: &replacedBy},
			TokenStateRotated,
		},
		{
			// Süresi dolmuş AMA rotate edilmiş token hâlâ reuse kanıtıdır —
			// rotated durumu expired'dan önce gelir.
			"expired but rotated",
			RefreshToken{ExpiresAt: past, IsRevoked: true, ReplacedByID: &replacedBy},
			TokenStateRotated,
		},
		{
			"expired and revoked",
			RefreshToken{ExpiresAt: past, IsRevoked: true},
			TokenStateRevoked,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.token.State(now))
		})
	}
}
