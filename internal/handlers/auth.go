package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/repository"
)

type AuthHandler struct {
	userRepository repository.UserRepository
	jwtSecret      string
	logger         zerolog.Logger
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(userRepository repository.UserRepository, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepository,
		jwtSecret:      jwtSecret,
		logger:         logger.With().Str("handler", "auth").Logger(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "All fields are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		http.Error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	user, err := h.userRepository.CreateUser(r.Context(), req.Name, req.Email, req.Password, models.RoleViewer)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			http.Error(w, "Email already in use", http.StatusConflict)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create user")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userRepository.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

// JWTMiddleware validates bearer tokens and places the caller's identity on
// the request context for the store and stream handlers to consume.
func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			http.Error(w, "Missing token claim", http.StatusUnauthorized)
			return
		}
		roleClaim, ok := claims["role"].(string)
		if !ok || !models.IsValidRole(models.UserRole(roleClaim)) {
			http.Error(w, "Missing role claim", http.StatusUnauthorized)
			return
		}

		ctx := authz.WithIdentity(r.Context(), userID, models.UserRole(roleClaim))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
