package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docvault/docvault-backend/internal/apierr"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/requestdata"
	"github.com/docvault/docvault-backend/internal/types"
	"github.com/docvault/docvault-backend/internal/utils"
)

type AuthService interface {
	LoginUser(ctx context.Context, email, password string) (string, *types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	userRepo  repos.UserRepo
	secretKey []byte
	accessTTL time.Duration
	log       *logger.Logger
}

func NewAuthService(userRepo repos.UserRepo, baseLog *logger.Logger) AuthService {
	log := baseLog.With("service", "AuthService")
	secret := utils.GetEnv("JWT_SECRET_KEY", "dev-secret-do-not-use", log)
	ttlHours := utils.GetEnvAsInt("JWT_ACCESS_TTL_HOURS", 3, log)

	return &authService{
		userRepo:  userRepo,
		secretKey: []byte(secret),
		accessTTL: time.Duration(ttlHours) * time.Hour,
		log:       log,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, *types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, apierr.Validation("email and password are required")
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", nil, err
	}
	if len(users) == 0 {
		return "", nil, apierr.Unauthorized("invalid credentials")
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apierr.Unauthorized("invalid credentials")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(as.accessTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secretKey)
	if err != nil {
		return "", nil, err
	}

	as.log.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return token, user, nil
}

// SetContextFromToken validates the bearer token and stashes the caller's
// identity in the context for downstream services.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return as.secretKey, nil
	})
	if err != nil || !parsed.Valid {
		return ctx, apierr.Unauthorized("invalid or expired token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apierr.Unauthorized("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid token subject")
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if !types.ValidRole(role) {
		return ctx, apierr.Unauthorized("invalid token role")
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       email,
		Role:        role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
