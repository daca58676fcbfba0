package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid", RegisterRequest{Email: "a@b.com", Password: "password1", FullName: "Ada"}, false},
		{"valid without name", RegisterRequest{Email: "a@b.com", Password: "password1"}, false},
		{"empty email", RegisterRequest{Password: "password1"}, true},
		{"invalid email", RegisterRequest{Email: "not-an-email", Password: "password1"}, true},
		{"short password", RegisterRequest{Email: "a@b.com", Password: "1234567"}, true},
		{"long name", RegisterRequest{Email: "a@b.com", Password: "password1",
			FullName: strings.Repeat("x", 101)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterRequestNormalizesEmail(t *testing.T) {
	req := RegisterRequest{Email: "  USER@Example.COM ", Password: "password1"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "user@example.com", req.Email)
}

func TestUpdateProfileRequestValidate(t *testing.T) {
	longName := strings.Repeat("x", 101)
	goodTZ := "Europe/Istanbul"
	badTZ := "Mars/Olympus"

	cases := []struct {
		name    string
		req     UpdateProfileRequest
		wantErr bool
	}{
		{"empty is valid", UpdateProfileRequest{}, false},
		{"valid timezone", UpdateProfileRequest{Timezone: &goodTZ}, false},
		{"invalid timezone", UpdateProfileRequest{Timezone: &badTZ}, true},
		{"long name", UpdateProfileRequest{FullName: &longName}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSendMessageRequestValidate(t *testing.T) {
	req := SendMessageRequest{Content: "  hello  "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "hello", req.Content)

	empty := SendMessageRequest{Content: "   "}
	assert.Error(t, empty.Validate())

	long := SendMessageRequest{Content: strings.Repeat("a", 8001)}
	assert.Error(t, long.Validate())

	// 8000 karakter tam sınırda geçerli
	max := SendMessageRequest{Content: strings.Repeat("a", 8000)}
	assert.NoError(t, max.Validate())
}
