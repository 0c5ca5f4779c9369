package security

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-123.apps.googleusercontent.com"

type jwksServer struct {
	*httptest.Server
	key     *rsa.PrivateKey
	fetches atomic.Int32
}

func newJWKSServer(t *testing.T) *jwksServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	s := &jwksServer{key: key}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.fetches.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=600, must-revalidate")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]string{{
				"kid": "key-1",
				"kty": "RSA",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) sign(t *testing.T, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(s.key)
	require.NoError(t, err)
	return signed
}

func googleClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "google-sub-1",
		"email":          "parent@example.com",
		"email_verified": true,
		"name":           "Pat Parent",
		"picture":        "https://example.com/p.png",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
}

func newTestVerifier(s *jwksServer) *IDTokenVerifier {
	return NewIDTokenVerifier("google", s.URL, []string{"https://accounts.google.com", "accounts.google.com"}, testClientID, s.Client())
}

func TestIDTokenVerifierAcceptsValidToken(t *testing.T) {
	s := newJWKSServer(t)
	v := newTestVerifier(s)

	identity, err := v.Verify(context.Background(), s.sign(t, "key-1", googleClaims()))
	require.NoError(t, err)
	assert.Equal(t, "google", identity.Provider)
	assert.Equal(t, "google-sub-1", identity.Subject)
	assert.Equal(t, "parent@example.com", identity.Email)
	assert.Equal(t, "Pat Parent", identity.Name)
	assert.Equal(t, "https://example.com/p.png", identity.Picture)
}

func TestIDTokenVerifierCachesKeys(t *testing.T) {
	s := newJWKSServer(t)
	v := newTestVerifier(s)

	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), s.sign(t, "key-1", googleClaims()))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), s.fetches.Load())

	// Past max-age the keys are fetched again
	v.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	claims := googleClaims()
	claims["iat"] = v.now().Unix()
	claims["exp"] = v.now().Add(time.Hour).Unix()
	_, err := v.Verify(context.Background(), s.sign(t, "key-1", claims))
	require.NoError(t, err)
	assert.Equal(t, int32(2), s.fetches.Load())
}

func TestIDTokenVerifierAcceptsAuthorizedParty(t *testing.T) {
	s := newJWKSServer(t)
	v := newTestVerifier(s)

	claims := googleClaims()
	claims["aud"] = "some-other-audience"
	claims["azp"] = testClientID
	_, err := v.Verify(context.Background(), s.sign(t, "key-1", claims))
	require.NoError(t, err)
}

func TestIDTokenVerifierRejects(t *testing.T) {
	s := newJWKSServer(t)

	tests := []struct {
		name   string
		kid    string
		mutate func(jwt.MapClaims)
	}{
		{name: "wrong issuer", kid: "key-1", mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }},
		{name: "wrong audience", kid: "key-1", mutate: func(c jwt.MapClaims) { c["aud"] = "someone-else" }},
		{name: "expired", kid: "key-1", mutate: func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }},
		{name: "missing subject", kid: "key-1", mutate: func(c jwt.MapClaims) { delete(c, "sub") }},
		{name: "unverified email", kid: "key-1", mutate: func(c jwt.MapClaims) { c["email_verified"] = false }},
		{name: "unknown key", kid: "key-2", mutate: func(jwt.MapClaims) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(s)
			claims := googleClaims()
			tt.mutate(claims)
			_, err := v.Verify(context.Background(), s.sign(t, tt.kid, claims))
			assert.Error(t, err)
		})
	}
}

func TestIDTokenVerifierRequiresClientID(t *testing.T) {
	s := newJWKSServer(t)
	v := NewIDTokenVerifier("google", s.URL, []string{"https://accounts.google.com"}, "", s.Client())

	_, err := v.Verify(context.Background(), s.sign(t, "key-1", googleClaims()))
	assert.Error(t, err)
	assert.Equal(t, int32(0), s.fetches.Load())
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 600*time.Second, maxAge("public, max-age=600, must-revalidate"))
	assert.Equal(t, 30*time.Second, maxAge("Max-Age=30"))
	assert.Equal(t, time.Hour, maxAge("no-store"))
	assert.Equal(t, time.Hour, maxAge("max-age=abc"))
	assert.Equal(t, time.Hour, maxAge(""))
}

func TestEmailVerified(t *testing.T) {
	assert.True(t, emailVerified(true))
	assert.True(t, emailVerified("true"))
	assert.False(t, emailVerified("false"))
	assert.False(t, emailVerified(nil))
}
