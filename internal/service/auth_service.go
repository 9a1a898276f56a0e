package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims que viajan en el token.
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// AuthService emite y valida los tokens propios del servicio (HS256).
type AuthService struct {
	users  UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (a *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := a.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}
	u := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hash,
	}
	if err := a.users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := a.IssueToken(u)
	if err != nil {
		return nil, "", err
	}
	log.Printf("[auth] usuario registrado: %s", u.Email)
	return u, token, nil
}

// Login no distingue email inexistente de contraseña incorrecta.
func (a *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*model.User, string, error) {
	u, err := a.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !checkPassword(u.Password, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.IssueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (a *AuthService) IssueToken(u *model.User) (string, error) {
	now := a.now()
	claims := &Claims{
		UserID:  u.ID.Hex(),
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken devuelve ErrTokenExpired o ErrInvalidToken; el middleware los
// mapea a 401 y 403.
func (a *AuthService) ParseToken(signed string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resuelve el token al usuario actual. Un token de un usuario
// borrado devuelve ErrUserNotFound.
func (a *AuthService) Authenticate(ctx context.Context, signed string) (*model.User, error) {
	claims, err := a.ParseToken(signed)
	if err != nil {
		return nil, err
	}
	u, err := a.users.FindByID(ctx, claims.UserID)
	if missing(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
