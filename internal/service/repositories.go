package service

import (
	"context"

	"storefront-api/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces que debe implementar repository (Mongo) y memstore (tests).

type OrderRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindOwned(ctx context.Context, id, userID string) (*model.Order, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Order, error)
	List(ctx context.Context, status model.OrderStatus, skip, limit int64) ([]*model.Order, error)
	Count(ctx context.Context, status model.OrderStatus) (int64, error)
	Recent(ctx context.Context, limit int64) ([]*model.Order, error)
	Revenue(ctx context.Context) (float64, error)
	Replace(ctx context.Context, o *model.Order) error
}

type ProductRepository interface {
	Insert(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter, skip, limit int64) ([]*model.Product, error)
	Count(ctx context.Context, f model.ProductFilter) (int64, error)
	Replace(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Insert(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error)
	FindAdmins(ctx context.Context) ([]*model.User, error)
	CountCustomers(ctx context.Context) (int64, error)
	Replace(ctx context.Context, u *model.User) error
}

type PaymentSettingsRepository interface {
	Insert(ctx context.Context, s *model.PaymentSettings) error
	FindByID(ctx context.Context, id string) (*model.PaymentSettings, error)
	FindActive(ctx context.Context) (*model.PaymentSettings, error)
	FindAll(ctx context.Context) ([]*model.PaymentSettings, error)
	DeactivateOthers(ctx context.Context, keepID string) error
	Replace(ctx context.Context, s *model.PaymentSettings) error
	Delete(ctx context.Context, id string) error
}
