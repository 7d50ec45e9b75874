// Package e2e drives a running usersearch server with Gherkin scenarios.
// Start the server with the seeded demo backend and point BASE_URL at it.
package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultSigningKey = "dev-secret-key-change-in-production"

// TestContext holds per-scenario HTTP state.
type TestContext struct {
	BaseURL    string
	SigningKey string
	HTTPClient *http.Client

	token        string
	forwardedFor string
	lastStatus   int
	lastBody     []byte
	lastHeader   http.Header
}

func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	key := os.Getenv("JWT_SIGNING_KEY")
	if key == "" {
		key = defaultSigningKey
	}
	return &TestContext{
		BaseURL:    baseURL,
		SigningKey: key,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SignInAs mints a token naming uid as the requester.
func (tc *TestContext) SignInAs(uid string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    "usersearch",
		Audience:  jwt.ClaimStrings{"usersearch"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(tc.SigningKey))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	tc.token = signed
	return nil
}

func (tc *TestContext) SetToken(token string) { tc.token = token }

// FromAddress makes later requests appear to come from ip.
func (tc *TestContext) FromAddress(ip string) { tc.forwardedFor = ip }

// Search calls the search endpoint with params.
func (tc *TestContext) Search(params url.Values) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+"/api/users/search?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	if tc.forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", tc.forwardedFor)
	}
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	tc.lastHeader = resp.Header
	return nil
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }
func (tc *TestContext) LastHeader() http.Header { return tc.lastHeader }
func (tc *TestContext) LastBody() []byte { return tc.lastBody }

// LastJSON decodes the last response body.
func (tc *TestContext) LastJSON() (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(tc.lastBody, &out); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", tc.lastBody, err)
	}
	return out, nil
}
