package api

import (
	"net/http"
	"time"
)

// RefreshCookieName is the cookie the refresh token travels in.
const RefreshCookieName = "PTOKEN_REFRESH"

// CookieConfig controls the attributes of the refresh token cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// expireRefreshCookie tells the client to drop the refresh cookie.
func (c CookieConfig) expireRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // serialised as Max-Age=0
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshTokenFromRequest returns the refresh cookie value, or "".
func refreshTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
