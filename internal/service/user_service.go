package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront-api/internal/config"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
)

type UserService struct {
	users  UserRepository
	orders OrderRepository
}

func NewUserService(users UserRepository, orders OrderRepository) *UserService {
	return &UserService{users: users, orders: orders}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if missing(err) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile solo cambia los campos que vienen con valor.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*model.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != u.Email {
		other, err := s.users.FindByEmail(ctx, email)
		if err == nil && other.ID != u.ID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		u.Email = email
	}
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&u.Name, req.Name)
	set(&u.Phone, req.Phone)
	set(&u.Address, req.Address)
	set(&u.City, req.City)
	set(&u.State, req.State)
	set(&u.Pincode, req.Pincode)

	if err := s.users.Replace(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(u.Password, req.CurrentPassword) {
		return ErrWrongPassword
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	return s.users.Replace(ctx, u)
}

// Stats resume las órdenes del usuario para su perfil.
func (s *UserService) Stats(ctx context.Context, userID string) (*dto.UserStatsResponse, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &dto.UserStatsResponse{TotalOrders: len(orders)}
	for _, o := range orders {
		stats.TotalSpent += o.TotalAmount
	}
	if !u.CreatedAt.IsZero() {
		stats.MemberSince = u.CreatedAt.Format("Jan 2006")
	}
	return stats, nil
}

// EnsureAdmin crea la cuenta de admin configurada o promueve la existente.
// Devuelve true si la cuenta se creó.
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (*model.User, bool, error) {
	u, err := s.users.FindByEmail(ctx, cfg.Email)
	if err == nil {
		if !u.IsAdmin {
			u.IsAdmin = true
			if err := s.users.Replace(ctx, u); err != nil {
				return nil, false, err
			}
			log.Printf("[admin] usuario %s promovido a admin", u.Email)
		}
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	hash, err := hashPassword(cfg.Password)
	if err != nil {
		return nil, false, err
	}
	u = &model.User{Name: cfg.Name, Email: cfg.Email, Password: hash, IsAdmin: true}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, false, fmt.Errorf("creating admin %s: %w", cfg.Email, err)
	}
	log.Printf("[admin] cuenta admin creada: %s", u.Email)
	return u, true, nil
}

// Promote marca como admin una cuenta existente.
func (s *UserService) Promote(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.IsAdmin {
		return u, nil
	}
	u.IsAdmin = true
	if err := s.users.Replace(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Admins(ctx context.Context) ([]*model.User, error) {
	return s.users.FindAdmins(ctx)
}
