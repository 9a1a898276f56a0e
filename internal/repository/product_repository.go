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

type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection("products")}
}

func (m *MongoProductRepository) Insert(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, p)
	return translate(err)
}

func (m *MongoProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p model.Product
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// productFilter usa el índice de texto (name, description) para la búsqueda.
func productFilter(f model.ProductFilter) bson.M {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["isActive"] = true
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}
	return filter
}

func (m *MongoProductRepository) List(ctx context.Context, f model.ProductFilter, skip, limit int64) ([]*model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := m.col.Find(ctx, productFilter(f), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Product](ctx, cur)
}

func (m *MongoProductRepository) Count(ctx context.Context, f model.ProductFilter) (int64, error) {
	return m.col.CountDocuments(ctx, productFilter(f))
}

func (m *MongoProductRepository) Replace(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoProductRepository) Delete(ctx context.Context, id string) error {
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
