package security

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kidoova/internal/models"
)

const (
	GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"
	AppleKeysURL   = "https://appleid.apple.com/auth/keys"

	defaultKeysMaxAge = time.Hour
	idTokenLeeway     = 5 * time.Minute
)

var ErrKeyNotFound = errors.New("signing key not found")

// IDTokenVerifier checks RS256 ID tokens from an OpenID provider against
// its published JWKS. Keys are cached for as long as the provider's
// Cache-Control max-age allows.
type IDTokenVerifier struct {
	provider string
	keysURL  string
	issuers  []string
	audience string
	client   *http.Client
	now      func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

// NewGoogleVerifier verifies Google ID tokens issued to clientID
func NewGoogleVerifier(clientID string, client *http.Client) *IDTokenVerifier {
	return NewIDTokenVerifier("google", GoogleCertsURL, []string{"https://accounts.google.com", "accounts.google.com"}, clientID, client)
}

// NewAppleVerifier verifies Sign in with Apple ID tokens issued to clientID
func NewAppleVerifier(clientID string, client *http.Client) *IDTokenVerifier {
	return NewIDTokenVerifier("apple", AppleKeysURL, []string{"https://appleid.apple.com"}, clientID, client)
}

// NewIDTokenVerifier creates a verifier for any provider publishing a JWKS
func NewIDTokenVerifier(provider, keysURL string, issuers []string, audience string, client *http.Client) *IDTokenVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &IDTokenVerifier{
		provider: provider,
		keysURL:  keysURL,
		issuers:  issuers,
		audience: audience,
		client:   client,
		now:      time.Now,
	}
}

// Provider names the identity provider this verifier trusts
func (v *IDTokenVerifier) Provider() string {
	return v.provider
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string      `json:"azp"`
	Email           string      `json:"email"`
	EmailVerified   interface{} `json:"email_verified"`
	Name            string      `json:"name"`
	Picture         string      `json:"picture"`
	Nonce           string      `json:"nonce"`
}

// Verify validates an ID token and returns the identity it asserts.
// The audience must match either aud or azp.
func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	if v.audience == "" {
		return nil, fmt.Errorf("%s sign-in is not configured", v.provider)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(idTokenLeeway),
		jwt.WithTimeFunc(v.now),
	)
	claims := &idTokenClaims{}
	parsed, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return v.publicKey(ctx, kid)
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !contains(v.issuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	if !contains(claims.Audience, v.audience) && claims.AuthorizedParty != v.audience {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.Email != "" && !emailVerified(claims.EmailVerified) {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	return &models.Identity{
		Provider: v.provider,
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}, nil
}

// Google sends email_verified as a bool, Apple as "true"/"false"
func emailVerified(value interface{}) bool {
	switch val := value.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	default:
		return false
	}
}

func contains(values []string, value string) bool {
	for _, entry := range values {
		if entry == value {
			return true
		}
	}
	return false
}

func (v *IDTokenVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys != nil && v.now().Before(v.expires) {
		if key, ok := v.keys[kid]; ok {
			return key, nil
		}
	}

	// Unknown kid or stale cache: providers rotate keys, so refetch once
	keys, maxAge, err := v.fetchKeys(ctx)
	if err != nil {
		return nil, err
	}
	v.keys = keys
	v.expires = v.now().Add(maxAge)

	key, ok := keys[kid]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

type jwkSet struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (v *IDTokenVerifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, v.keysURL, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := v.client.Do(request)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s keys: %w", v.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("failed to fetch %s keys: status %d", v.provider, resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s keys: %w", v.provider, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, key := range set.Keys {
		if key.Kty != "RSA" {
			continue
		}
		pub, err := rsaPublicKey(key)
		if err != nil {
			return nil, 0, err
		}
		keys[key.Kid] = pub
	}
	return keys, maxAge(resp.Header.Get("Cache-Control")), nil
}

func rsaPublicKey(key jwkKey) (*rsa.PublicKey, error) {
	modulusBytes, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus for key %s: %w", key.Kid, err)
	}
	exponentBytes, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent for key %s: %w", key.Kid, err)
	}
	exponent := 0
	for _, b := range exponentBytes {
		exponent = exponent*256 + int(b)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulusBytes),
		E: exponent,
	}, nil
}

// maxAge reads max-age from a Cache-Control header, defaulting to an hour
func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultKeysMaxAge
}
