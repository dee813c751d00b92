// ABOUTME: Outbound request decoration with the session bearer token.
// ABOUTME: Reports every 401 response together with the token that was sent.

package middleware

import (
	"net/http"
	"strings"
)

// TokenSource supplies the current session token; "" means no session.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Bearer sets "Authorization: Bearer <token>" whenever the source has a token.
// The request is cloned so callers' requests are never mutated.
func Bearer(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if src == nil {
				return next.RoundTrip(r)
			}
			token := src.Token()
			if token == "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}

// Unauthorized invokes handler for every 401 response, whichever caller
// issued the request. The handler receives the token that was attached
// ("" if none) so it can ignore failures from a superseded session.
// The response is still returned to the caller unchanged.
func Unauthorized(handler func(token string)) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil || resp.StatusCode != http.StatusUnauthorized || handler == nil {
				return resp, err
			}
			handler(bearerToken(r))
			return resp, err
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return token
	}
	return ""
}
