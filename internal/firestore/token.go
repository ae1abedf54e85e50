package firestore

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"

	datastoreScope = "https://www.googleapis.com/auth/datastore"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// assertionLifetime is the validity window claimed on the signed JWT.
	assertionLifetime = time.Hour

	// tokenExpiryMargin is subtracted from expires_in when caching, so a
	// cached token is never used within 60 seconds of its stated expiry.
	tokenExpiryMargin = 60 * time.Second
)

// tokenSource acquires and caches an OAuth2 access token via the JWT-bearer
// grant, signing the assertion with the service account private key. The
// cached token is shared mutable state; refresh is serialized with a mutex so
// concurrent operations that race on an expired token trigger a single
// exchange.
type tokenSource struct {
	email      string
	signingKey *rsa.PrivateKey
	tokenURL   string
	httpClient *http.Client
	log        *zap.Logger

	now func() time.Time

	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// parseServiceAccountKey parses a PEM-encoded RSA private key. Literal `\n`
// sequences are normalized to real newlines first: keys sourced from
// environment variables or JSON key files commonly arrive escaped.
func parseServiceAccountKey(pemKey string) (*rsa.PrivateKey, error) {
	normalized := strings.ReplaceAll(pemKey, `\n`, "\n")
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(normalized))
	if err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}
	return key, nil
}

// Token returns a bearer token valid for at least tokenExpiryMargin, fetching
// a fresh one from the token endpoint when the cache is empty or due to
// expire.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.accessToken != "" && ts.now().Before(ts.expiry) {
		return ts.accessToken, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", &AuthError{Cause: err}
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &AuthError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &AuthError{Cause: err}
	}
	if tr.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	ts.accessToken = tr.AccessToken
	ts.expiry = ts.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryMargin)

	ts.log.Debug("access token refreshed",
		zap.String("token_type", tr.TokenType),
		zap.Time("expiry", ts.expiry))

	return ts.accessToken, nil
}

// signAssertion builds the RS256-signed JWT exchanged for an access token.
func (ts *tokenSource) signAssertion() (string, error) {
	now := ts.now()
	claims := jwt.MapClaims{
		"iss":   ts.email,
		"scope": datastoreScope,
		"aud":   ts.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token assertion: %w", err)
	}
	return signed, nil
}
