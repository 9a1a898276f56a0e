package repository

import (
	"context"
	"strings"
	"time"

	"storefront-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection("users")}
}

// Insert devuelve ErrDuplicateKey si el email ya existe (índice único).
func (m *MongoUserRepository) Insert(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, u)
	return translate(err)
}

func (m *MongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (m *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := m.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (m *MongoUserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	out := make(map[primitive.ObjectID]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := m.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	users, err := decodeAll[model.User](ctx, cur)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (m *MongoUserRepository) FindAdmins(ctx context.Context) ([]*model.User, error) {
	cur, err := m.col.Find(ctx, bson.M{"isAdmin": true})
	if err != nil {
		return nil, err
	}
	return decodeAll[model.User](ctx, cur)
}

func (m *MongoUserRepository) CountCustomers(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{"isAdmin": false})
}

func (m *MongoUserRepository) Replace(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = time.Now().UTC()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
