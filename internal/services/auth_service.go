package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tasksphere/internal/domain/user"
	"tasksphere/internal/repository"
	tasksphere_errors "tasksphere/pkg/errors"
)

type AuthService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	accessTTL  time.Duration
	bcryptCost int
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	BcryptCost int
}

func NewAuthService(userRepo repository.UserRepository, cfg AuthConfig) *AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return AuthResponse{}, tasksphere_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return AuthResponse{}, fmt.Errorf("%w: password too short", tasksphere_errors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return AuthResponse{}, err
	}

	u := user.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         user.RoleMember,
	}
	if err := s.userRepo.Create(ctx, &u); err != nil {
		return AuthResponse{}, err
	}
	return s.issueToken(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		// Same failure for unknown email and bad password.
		return AuthResponse{}, tasksphere_errors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResponse{}, tasksphere_errors.ErrUnauthorized
	}
	return s.issueToken(u)
}

// GetUser loads a user profile by id.
func (s *AuthService) GetUser(ctx context.Context, id int64) (UserInfo, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return UserInfo{}, err
	}
	return UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, nil
}

// AuthenticateToken validates a bearer token and loads its user. Used by
// both the REST middleware and the websocket handshake.
func (s *AuthService) AuthenticateToken(ctx context.Context, token string) (user.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return user.User{}, tasksphere_errors.ErrUnauthorized
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return user.User{}, tasksphere_errors.ErrUnauthorized
	}
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, tasksphere_errors.ErrUnauthorized
	}
	return u, nil
}

func (s *AuthService) issueToken(u user.User) (AuthResponse, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User:        UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
	}, nil
}

func (s *AuthService) parseToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, tasksphere_errors.ErrUnauthorized
	}
	return claims, nil
}
