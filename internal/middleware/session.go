package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"healthmap/internal/auth"
	"healthmap/internal/sensor"
	"healthmap/internal/services"

	"go.uber.org/zap"
)

// SessionHeader carries the token issued by POST /sessions.
const SessionHeader = "X-Session-Token"

type contextKey string

const ContextSessionKey contextKey = "session"

type SessionMiddleware struct {
	tokens *auth.SessionManager
	store  *services.SessionStore
	logr   *zap.Logger
}

func NewSessionMiddleware(tokens *auth.SessionManager, store *services.SessionStore, logr *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, store: store, logr: logr}
}

// RequireSession verifies the session token and attaches the session (and
// the client address, for the GeoIP sensor) to the request context.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get(SessionHeader)
		if tokenString == "" {
			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if tokenString == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}

		sid, err := m.tokens.Verify(tokenString)
		if err != nil {
			m.logr.Warn("session token rejected", zap.Error(err))
			http.Error(w, "invalid or expired session token", http.StatusUnauthorized)
			return
		}

		sess := m.store.Get(sid)

		ctx := context.WithValue(r.Context(), ContextSessionKey, sess)
		if ip := clientIP(r); ip != nil {
			ctx = sensor.WithClientIP(ctx, ip)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFrom returns the session attached by RequireSession.
func SessionFrom(ctx context.Context) (*services.Session, bool) {
	sess, ok := ctx.Value(ContextSessionKey).(*services.Session)
	return sess, ok && sess != nil
}

// WithSession attaches sess to ctx. Handlers under test use it to skip token
// verification.
func WithSession(ctx context.Context, sess *services.Session) context.Context {
	return context.WithValue(ctx, ContextSessionKey, sess)
}

// clientIP prefers RemoteAddr as rewritten by chi's RealIP middleware.
func clientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
