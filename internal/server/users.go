// users.go - Signup, login, profile, and avatar handlers.
//
// Login follows the Authorization-header convention: credentials
// arrive as HTTP Basic auth and a signed bearer token comes back.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SignupRequest represents the JSON payload for user registration
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupResponse is the JSON response after successful registration
type SignupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResponse carries the bearer token issued on successful login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse is the authenticated caller's own profile
type MeResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateUsername checks username requirements
func validateUsername(username string) (bool, string) {
	if len(username) < 3 {
		return false, "username must be at least 3 characters long"
	}
	if len(username) > 50 {
		return false, "username must be less than 50 characters"
	}
	if !usernamePattern.MatchString(username) {
		return false, "username can only contain letters, numbers, and underscores"
	}
	return true, ""
}

// validatePassword checks password strength requirements
func validatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "password must be at least 8 characters long"
	}
	if len(password) > 128 {
		return false, "password must be less than 128 characters"
	}
	return true, ""
}

// hashPassword generates a bcrypt hash of the password
func hashPassword(password string) (string, error) {
	// bcrypt cost of 12 is a good balance of security and performance
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a password with its hash
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// signupHandler handles POST /api/v1/auth/signup requests.
func (cfg Config) signupHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Password = strings.TrimSpace(req.Password)

		if valid, msg := validateUsername(req.Username); !valid {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		if valid, msg := validatePassword(req.Password); !valid {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		var exists bool
		err := cfg.DB.QueryRowContext(r.Context(),
			"SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)",
			req.Username,
		).Scan(&exists)
		if err != nil {
			log.Printf("signup: db check failed: %v", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if exists {
			http.Error(w, "username already registered", http.StatusConflict)
			return
		}

		passwordHash, err := hashPassword(req.Password)
		if err != nil {
			log.Printf("signup: hash failed: %v", err)
			http.Error(w, "failed to process password", http.StatusInternalServerError)
			return
		}

		var userID string
		err = cfg.DB.QueryRowContext(r.Context(), `
			INSERT INTO users (username, password_hash)
			VALUES ($1, $2)
			RETURNING id
		`, req.Username, passwordHash).Scan(&userID)
		if err != nil {
			log.Printf("signup: insert failed: %v", err)
			http.Error(w, "failed to create user", http.StatusInternalServerError)
			return
		}

		log.Printf("signup: created user %s (%s)", req.Username, userID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(SignupResponse{
			ID:       userID,
			Username: req.Username,
		})
	})
}

// loginHandler handles GET /api/v1/auth/login with Basic credentials.
// On success it issues a signed bearer token.
func (cfg Config) loginHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="driftchat"`)
			http.Error(w, "missing credentials", http.StatusUnauthorized)
			return
		}

		var userID, passwordHash string
		err := cfg.DB.QueryRowContext(r.Context(),
			"SELECT id, password_hash FROM users WHERE username = $1",
			username,
		).Scan(&userID, &passwordHash)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				log.Printf("login: db query failed: %v", err)
			}
			GetMetrics().RecordLoginAttempt(false)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		if !verifyPassword(password, passwordHash) {
			GetMetrics().RecordLoginAttempt(false)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, exp, err := cfg.Auth.makeToken(userID)
		if err != nil {
			log.Printf("login: token issue failed: %v", err)
			http.Error(w, "failed to issue token", http.StatusInternalServerError)
			return
		}

		GetMetrics().RecordLoginAttempt(true)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(LoginResponse{Token: token, ExpiresAt: exp})
	})
}

// meHandler handles GET /api/v1/auth/me for the authenticated caller.
func (cfg Config) meHandler() http.Handler {
	return cfg.Auth.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var username string
		var avatarURL sql.NullString
		err := cfg.DB.QueryRowContext(r.Context(),
			"SELECT username, avatar_url FROM users WHERE id = $1",
			userID,
		).Scan(&username, &avatarURL)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			log.Printf("me: db query failed: %v", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(MeResponse{
			ID:        userID.String(),
			Username:  username,
			AvatarURL: avatarURL.String,
		})
	}))
}

// uploadAvatarHandler handles POST /api/v1/profiles/avatar. It runs
// the same ingestion pipeline as a regular image upload and then
// records the resulting URL as the caller's avatar.
func (cfg Config) uploadAvatarHandler() http.Handler {
	return cfg.Auth.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		stored, ok := cfg.ingestImagePart(w, r, userID)
		if !ok {
			return
		}

		_, err := cfg.DB.ExecContext(r.Context(),
			"UPDATE users SET avatar_url = $1 WHERE id = $2",
			stored.URL, userID,
		)
		if err != nil {
			log.Printf("avatar: update failed: %v", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=avatar_updated user=%s filename=%s", rid, userID, stored.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(stored)
	}))
}
