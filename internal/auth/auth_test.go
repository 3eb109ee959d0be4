package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("super-secret")

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("user-123", secret, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(tok, secret)

	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestParseToken_Failures(t *testing.T) {
	t.Parallel()

	expired, err := GenerateToken("u1", secret, -time.Second)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)

	signed, err := GenerateToken("u1", []byte("other-secret"), time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(noSubject, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u1"}).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(hs512, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("garbage", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSubjectUnverified(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u9", []byte("unknown-to-cli"), time.Hour)
	require.NoError(t, err)

	sub, err := SubjectUnverified(tok)
	require.NoError(t, err)
	assert.Equal(t, "u9", sub)

	_, err = SubjectUnverified("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(secret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	valid, err := GenerateToken("u1", secret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer", "Bearer " + valid, fiber.StatusOK, "u1"},
		{"lowercase scheme", "bearer " + valid, fiber.StatusOK, "u1"},
		{"missing header", "", fiber.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + valid, fiber.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}
