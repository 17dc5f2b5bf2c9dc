package server

import (
	"net/http"
	"strconv"

	"menuboard/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
}

// handleLogin verifies credentials and issues a session cookie. Failed
// attempts feed the per-username throttle; while a cooldown is active the
// endpoint answers 429 with a Retry-After header without touching the
// password at all.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if wait := s.throttle.WaitSeconds(req.Username); wait > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		s.writeError(w, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	}

	user, ok, err := s.store.FindAdminUserByUsername(req.Username)
	if err != nil {
		s.storeError(w, err)
		return
	}
	// Same response for unknown user and wrong password: no username
	// enumeration.
	if !ok || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.throttle.RecordFailure(req.Username)
		s.log.Warn("failed login attempt", "username", req.Username)
		s.writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	s.throttle.RecordSuccess(req.Username)

	sess, err := s.sessions.Create(user)
	if err != nil {
		s.log.Error("failed to create session", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Info("admin logged in", "username", user.Username)
	s.writeJSON(w, http.StatusOK, loginResponse{Username: user.Username})
}

// handleLogout destroys the session, if any, and expires the cookie.
// Logging out without a session still succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
