package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	spreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"
	jwtBearerGrant    = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime = time.Hour
	// expirySkew renews the cached token slightly before the server would
	// reject it.
	expirySkew = time.Minute
)

// ServiceAccountKey is the subset of a Google service-account JSON key the
// token source needs.
type ServiceAccountKey struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ParseServiceAccountKey decodes and validates a service-account JSON key.
func ParseServiceAccountKey(raw string) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return nil, fmt.Errorf("failed to decode service account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account key is missing client_email or private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = "https://oauth2.googleapis.com/token"
	}
	return &key, nil
}

// tokenSource exchanges a signed service-account assertion for a short-lived
// access token and caches it until expiry.
type tokenSource struct {
	key    *ServiceAccountKey
	client *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenSource(key *ServiceAccountKey, client *http.Client) *tokenSource {
	return &tokenSource{key: key, client: client}
}

func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expires.Add(-expirySkew)) {
		return ts.token, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.key.TokenURI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	ts.token = payload.AccessToken
	ts.expires = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return ts.token, nil
}

func (ts *tokenSource) signAssertion() (string, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.key.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse service account private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.key.ClientEmail,
		"scope": spreadsheetsScope,
		"aud":   ts.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}
