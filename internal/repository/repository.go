package repository

import (
	"context"
	"errors"
	"time"

	"storefront-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidID    = errors.New("invalid id")
	ErrDuplicateKey = errors.New("duplicate key")
)

func objectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// translate convierte los errores del driver en los errores del paquete.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	default:
		return err
	}
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]*T, error) {
	defer cur.Close(ctx)

	var out []*T
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, o)
	return translate(err)
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

// FindOwned solo encuentra la orden si pertenece al usuario.
func (m *MongoOrderRepository) FindOwned(ctx context.Context, id, userID string) (*model.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return m.findOne(ctx, bson.M{"_id": oid, "user": uid})
}

func (m *MongoOrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error) {
	return m.findOne(ctx, bson.M{"paymentIntentId": intentID})
}

func (m *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*model.Order, error) {
	var res model.Order
	if err := m.col.FindOne(ctx, filter).Decode(&res); err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func (m *MongoOrderRepository) FindByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"user": uid}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Order](ctx, cur)
}

func statusFilter(status model.OrderStatus) bson.M {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func (m *MongoOrderRepository) List(ctx context.Context, status model.OrderStatus, skip, limit int64) ([]*model.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := m.col.Find(ctx, statusFilter(status), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Order](ctx, cur)
}

func (m *MongoOrderRepository) Count(ctx context.Context, status model.OrderStatus) (int64, error) {
	return m.col.CountDocuments(ctx, statusFilter(status))
}

func (m *MongoOrderRepository) Recent(ctx context.Context, limit int64) ([]*model.Order, error) {
	return m.List(ctx, "", 0, limit)
}

// Revenue suma totalAmount de todas las órdenes no canceladas.
func (m *MongoOrderRepository) Revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": model.StatusCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	}
	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// Replace guarda el documento completo (lectura-modificación-escritura, sin control
// de concurrencia: gana la última escritura).
func (m *MongoOrderRepository) Replace(ctx context.Context, o *model.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
