package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"foodcal/internal/ics"
	applog "foodcal/internal/log"
)

// Feed tokens are long-lived: a calendar subscription URL is pasted into a
// client once and then polled for months.
const feedTokenTTL = 365 * 24 * time.Hour

const feedScope = "feed"

type feedTokenResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// handleFeedToken mints a signed token for the ICS feed URL. Calendar
// clients cannot send basic-auth credentials, so the subscription carries
// this token as a query parameter instead.
func (s *Server) handleFeedToken(w http.ResponseWriter, r *http.Request) {
	if s.cfg.FeedSecret == "" {
		writeError(w, http.StatusServiceUnavailable, "feed_secret is not configured")
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"scope": feedScope,
		"iat":   now.Unix(),
		"exp":   now.Add(feedTokenTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.FeedSecret))
	if err != nil {
		applog.Error("failed to sign feed token", err)
		writeError(w, http.StatusInternalServerError, "failed to sign feed token")
		return
	}

	writeJSON(w, http.StatusOK, feedTokenResponse{
		Token: signed,
		URL:   fmt.Sprintf("http://%s/calendar.ics?token=%s", s.cfg.Listen, signed),
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if s.cfg.FeedSecret == "" {
		writeError(w, http.StatusServiceUnavailable, "feed_secret is not configured")
		return
	}

	if !s.validFeedToken(r.URL.Query().Get("token")) {
		writeError(w, http.StatusUnauthorized, "invalid feed token")
		return
	}

	foods, err := s.app.Foods().List(r.Context())
	if err != nil {
		applog.Error("failed to list foods for feed", err)
		writeError(w, http.StatusInternalServerError, "failed to build feed")
		return
	}

	body := ics.Build(foods, s.cfg.HorizonDays, s.app.Location())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="foodcal.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) validFeedToken(raw string) bool {
	if raw == "" {
		return false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.FeedSecret), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	scope, _ := claims["scope"].(string)
	return scope == feedScope
}
