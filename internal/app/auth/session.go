package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie carries the signed principal between requests.
	SessionCookie = "todo_session"
	// StateCookie holds the OAuth state token while a challenge is pending.
	StateCookie = "todo_oauth_state"

	stateCookieTTL = 10 * time.Minute
)

var ErrInvalidSession = errors.New("invalid session")

type sessionClaims struct {
	jwt.RegisteredClaims
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// Sessions issues and validates the stateless session cookie. The
// principal travels as HS256-signed JWT claims; there is no server-side
// session store to invalidate, signing out simply clears the cookie.
type Sessions struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		Secret: []byte(secret),
		TTL:    ttl,
		Secure: secure,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue signs p into a session cookie value.
func (s *Sessions) Issue(p Principal) (string, error) {
	now := s.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
		Name:       p.Name,
		AvatarURL:  p.AvatarURL,
		ProfileURL: p.ProfileURL,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Parse validates a session cookie value and recovers the principal.
func (s *Sessions) Parse(token string) (Principal, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.Now), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidSession
	}
	return Principal{
		UserID:     claims.Subject,
		Name:       claims.Name,
		AvatarURL:  claims.AvatarURL,
		ProfileURL: claims.ProfileURL,
	}, nil
}

// SetSessionCookie installs the session cookie on the response.
func (s *Sessions) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (s *Sessions) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
