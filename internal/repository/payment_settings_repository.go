package repository

import (
	"context"
	"time"

	"storefront-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPaymentSettingsRepository struct {
	col *mongo.Collection
}

func NewMongoPaymentSettingsRepository(db *mongo.Database) *MongoPaymentSettingsRepository {
	return &MongoPaymentSettingsRepository{col: db.Collection("payment_settings")}
}

func (m *MongoPaymentSettingsRepository) Insert(ctx context.Context, s *model.PaymentSettings) error {
	now := time.Now().UTC()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, s)
	return translate(err)
}

func (m *MongoPaymentSettingsRepository) FindByID(ctx context.Context, id string) (*model.PaymentSettings, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *MongoPaymentSettingsRepository) FindActive(ctx context.Context) (*model.PaymentSettings, error) {
	return m.findOne(ctx, bson.M{"isActive": true})
}

func (m *MongoPaymentSettingsRepository) findOne(ctx context.Context, filter bson.M) (*model.PaymentSettings, error) {
	var s model.PaymentSettings
	if err := m.col.FindOne(ctx, filter).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (m *MongoPaymentSettingsRepository) FindAll(ctx context.Context) ([]*model.PaymentSettings, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.PaymentSettings](ctx, cur)
}

// DeactivateOthers apaga todos los registros salvo keepID. Con keepID vacío
// apaga todos.
func (m *MongoPaymentSettingsRepository) DeactivateOthers(ctx context.Context, keepID string) error {
	filter := bson.M{"isActive": true}
	if keepID != "" {
		oid, err := objectID(keepID)
		if err != nil {
			return err
		}
		filter["_id"] = bson.M{"$ne": oid}
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := m.col.UpdateMany(ctx, filter, update)
	return err
}

func (m *MongoPaymentSettingsRepository) Replace(ctx context.Context, s *model.PaymentSettings) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoPaymentSettingsRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
