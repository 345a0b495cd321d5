package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
)

// SessionHandlers issues guest shopper sessions
type SessionHandlers struct {
	jwtService *auth.JWTService
	logger     *zap.Logger
	secure     bool
}

func NewSessionHandlers(jwtService *auth.JWTService, secureCookie bool, logger *zap.Logger) *SessionHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandlers{jwtService: jwtService, secure: secureCookie, logger: logger}
}

// CreateSession mints a token for a new guest id and sets it as the session
// cookie. The token is also returned for clients that send a Bearer header.
func (h *SessionHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.jwtService.NewGuestSession()
	if err != nil {
		h.logger.Error("failed to issue guest session", zap.Error(err))
		respondJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.jwtService.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusCreated, session)
}
