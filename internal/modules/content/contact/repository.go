package contact

import (
	"context"
	"errors"

	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
	"github.com/youth-club/core/internal/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "contact_messages"

type Repository interface {
	Insert(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, unreadOnly bool, q pagination.Query) ([]*models.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id string) (*models.ContactMessage, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collection)}
}

// EnsureIndexes creates the listing index. It is a no-op for repositories
// not backed by MongoDB.
func EnsureIndexes(ctx context.Context, repo Repository) error {
	m, ok := repo.(*mongoRepository)
	if !ok {
		return nil
	}
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "read", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return apperr.Store(err, "create contact indexes")
}

func (r *mongoRepository) Insert(ctx context.Context, msg *models.ContactMessage) error {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return apperr.Store(err, "insert contact message")
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context, unreadOnly bool, q pagination.Query) ([]*models.ContactMessage, int64, error) {
	filter := bson.M{}
	if unreadOnly {
		filter["read"] = false
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Store(err, "count contact messages")
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Size)))
	if err != nil {
		return nil, 0, apperr.Store(err, "list contact messages")
	}
	var out []*models.ContactMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, apperr.Store(err, "decode contact messages")
	}
	return out, total, nil
}

func (r *mongoRepository) MarkRead(ctx context.Context, id string) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("contact message", id)
	}
	if err != nil {
		return nil, apperr.Store(err, "mark contact message read")
	}
	return &msg, nil
}
