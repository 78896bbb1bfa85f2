package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const oauthScope = "user:email"

var ErrExchangeFailed = errors.New("authorization code exchange failed")

// GitHub drives the OAuth authorization-code flow against github.com or
// a GitHub Enterprise installation. Only the observable contract is
// implemented: build the authorize redirect, exchange the callback code
// for an access token, and fetch the signed-in user's profile.
type GitHub struct {
	ClientID         string
	ClientSecret     string
	EnterpriseDomain string

	// Endpoint overrides for tests; empty values fall back to the
	// public (or enterprise) defaults.
	AuthorizeURL string
	TokenURL     string
	UserURL      string

	HTTPClient *http.Client
}

func NewGitHub(clientID, clientSecret, enterpriseDomain string) *GitHub {
	return &GitHub{
		ClientID:         clientID,
		ClientSecret:     clientSecret,
		EnterpriseDomain: enterpriseDomain,
		HTTPClient:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GitHub) authorizeURL() string {
	if g.AuthorizeURL != "" {
		return g.AuthorizeURL
	}
	if g.EnterpriseDomain != "" {
		return "https://" + g.EnterpriseDomain + "/login/oauth/authorize"
	}
	return "https://github.com/login/oauth/authorize"
}

func (g *GitHub) tokenURL() string {
	if g.TokenURL != "" {
		return g.TokenURL
	}
	if g.EnterpriseDomain != "" {
		return "https://" + g.EnterpriseDomain + "/login/oauth/access_token"
	}
	return "https://github.com/login/oauth/access_token"
}

func (g *GitHub) userURL() string {
	if g.UserURL != "" {
		return g.UserURL
	}
	if g.EnterpriseDomain != "" {
		return "https://" + g.EnterpriseDomain + "/api/v3/user"
	}
	return "https://api.github.com/user"
}

// ChallengeURL builds the provider authorize URL for a new sign-in
// attempt carrying the anti-forgery state token.
func (g *GitHub) ChallengeURL(redirectURI, state string) string {
	query := url.Values{}
	query.Set("client_id", g.ClientID)
	query.Set("redirect_uri", redirectURI)
	query.Set("scope", oauthScope)
	query.Set("state", state)
	return g.authorizeURL() + "?" + query.Encode()
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Exchange trades an authorization code for profile claims. Any failure
// is fatal to the sign-in attempt; the caller returns the user to the
// anonymous state without retrying.
func (g *GitHub) Exchange(ctx context.Context, code, redirectURI string) (Principal, error) {
	token, err := g.exchangeCode(ctx, code, redirectURI)
	if err != nil {
		return Principal{}, err
	}

	user, err := g.fetchUser(ctx, token)
	if err != nil {
		return Principal{}, err
	}

	p := Principal{
		UserID:     strconv.FormatInt(user.ID, 10),
		Name:       user.Name,
		ProfileURL: user.HTMLURL,
	}
	if p.Name == "" {
		p.Name = user.Login
	}
	// Enterprise avatar URLs are not reachable from the public internet,
	// so the claim is only mapped for github.com.
	if g.EnterpriseDomain == "" {
		p.AvatarURL = user.AvatarURL
	}
	return p, nil
}

func (g *GitHub) exchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	form := url.Values{}
	form.Set("client_id", g.ClientID)
	form.Set("client_secret", g.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrExchangeFailed, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.Error != "" || token.AccessToken == "" {
		return "", fmt.Errorf("%w: %s", ErrExchangeFailed, token.Error)
	}
	return token.AccessToken, nil
}

func (g *GitHub) fetchUser(ctx context.Context, accessToken string) (userResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userURL(), nil)
	if err != nil {
		return userResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return userResponse{}, fmt.Errorf("user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return userResponse{}, fmt.Errorf("%w: user endpoint returned %d", ErrExchangeFailed, resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&user); err != nil {
		return userResponse{}, fmt.Errorf("decode user response: %w", err)
	}
	if user.ID == 0 {
		return userResponse{}, fmt.Errorf("%w: user response missing id", ErrExchangeFailed)
	}
	return user, nil
}
