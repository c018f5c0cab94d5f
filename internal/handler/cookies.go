package handler

import (
	"net/http"
	"time"

	"ecommerce-auth/internal/model"
)

// CookiePolicy decides how the token pair travels to the browser. Each
// cookie lives exactly as long as its token.
type CookiePolicy struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func (p CookiePolicy) setTokenCookies(w http.ResponseWriter, accessToken string, refreshToken string) {
	p.setAccessCookie(w, accessToken)
	http.SetCookie(w, p.cookie(model.RefreshTokenCookie, refreshToken, int(p.RefreshMaxAge.Seconds())))
}

func (p CookiePolicy) setAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, p.cookie(model.AccessTokenCookie, accessToken, int(p.AccessMaxAge.Seconds())))
}

func (p CookiePolicy) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, p.cookie(model.AccessTokenCookie, "", -1))
	http.SetCookie(w, p.cookie(model.RefreshTokenCookie, "", -1))
}

func (p CookiePolicy) cookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
