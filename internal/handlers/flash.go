package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookieName = "qb_flash"

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SetFlash queues a flash message for the next page load. Type is "success"
// or "error", matching the front-end styling classes.
func SetFlash(w http.ResponseWriter, message, flashType string) {
	payload, err := json.Marshal(Flash{Message: message, Type: flashType})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the queued flash message, if any
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	payload, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flash Flash
	if err := json.Unmarshal(payload, &flash); err != nil {
		return nil
	}
	return &flash
}
