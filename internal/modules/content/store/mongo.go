package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/youth-club/core/internal/models"
	"github.com/youth-club/core/internal/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Repository backed by one MongoDB collection per kind.
type Mongo[T any, PT models.RecordPtr[T]] struct {
	coll *mongo.Collection
	kind models.ContentKind
}

func NewMongo[T any, PT models.RecordPtr[T]](db *mongo.Database) *Mongo[T, PT] {
	var zero T
	kind := PT(&zero).Kind()
	return &Mongo[T, PT]{coll: db.Collection(kind.Collection()), kind: kind}
}

// EnsureIndexes creates the indexes list and count queries rely on.
func (m *Mongo[T, PT]) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return apperr.Store(err, fmt.Sprintf("create %s indexes", m.kind))
}

func (m *Mongo[T, PT]) Insert(ctx context.Context, rec *T) error {
	base := PT(rec).Base()
	if base.ID == "" {
		base.ID = primitive.NewObjectID().Hex()
	}
	if _, err := m.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict(fmt.Sprintf("%s %s already exists", m.kind, base.ID))
		}
		return apperr.Store(err, fmt.Sprintf("insert %s", m.kind))
	}
	return nil
}

func (m *Mongo[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	rec := new(T)
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(string(m.kind), id)
	}
	if err != nil {
		return nil, apperr.Store(err, fmt.Sprintf("get %s", m.kind))
	}
	return rec, nil
}

func (m *Mongo[T, PT]) List(ctx context.Context, f Filter) ([]*T, int64, error) {
	filter := listFilter(f)

	total, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Store(err, fmt.Sprintf("count %s", m.kind))
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(f.Page.Skip()).
		SetLimit(int64(f.Page.Size))
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Store(err, fmt.Sprintf("list %s", m.kind))
	}
	var items []T
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, apperr.Store(err, fmt.Sprintf("decode %s", m.kind))
	}

	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, total, nil
}

func (m *Mongo[T, PT]) Counts(ctx context.Context) (map[models.ContentStatus]int64, error) {
	cur, err := m.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, apperr.Store(err, fmt.Sprintf("count %s by status", m.kind))
	}
	var rows []struct {
		Status models.ContentStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, apperr.Store(err, fmt.Sprintf("decode %s counts", m.kind))
	}

	counts := emptyCounts()
	for _, r := range rows {
		if r.Status.Valid() {
			counts[r.Status] = r.Count
		}
	}
	return counts, nil
}

func (m *Mongo[T, PT]) Transition(ctx context.Context, id string, d Decision) (*T, error) {
	rec := new(T)
	err := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		transitionUpdate(d),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(rec)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Store(err, fmt.Sprintf("transition %s", m.kind))
	}

	// Nothing matched: either the id is unknown or another moderator got there first.
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, conflict(m.kind, id, PT(current).Base().Status)
}

func (m *Mongo[T, PT]) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Store(err, fmt.Sprintf("delete %s", m.kind))
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(string(m.kind), id)
	}
	return nil
}

func listFilter(f Filter) bson.M {
	filter := bson.M{}
	switch len(f.Status) {
	case 0:
	case 1:
		filter["status"] = f.Status[0]
	default:
		filter["status"] = bson.M{"$in": f.Status}
	}
	if f.CreatedBy != "" {
		filter["createdBy"] = f.CreatedBy
	}
	return filter
}

// transitionUpdate sets the decision fields. updatedAt uses $max so it never
// moves backwards when clocks disagree.
func transitionUpdate(d Decision) bson.M {
	set := bson.M{
		"status":      d.To,
		"approvedBy":  d.By,
		"moderatedAt": d.At,
	}
	if d.Note != "" {
		set["moderationNote"] = d.Note
	}
	return bson.M{
		"$set": set,
		"$max": bson.M{"updatedAt": d.At},
	}
}

func conflict(kind models.ContentKind, id string, current models.ContentStatus) error {
	return apperr.Conflict(fmt.Sprintf("%s %s is already %s", kind, id, current))
}

func emptyCounts() map[models.ContentStatus]int64 {
	counts := make(map[models.ContentStatus]int64, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	return counts
}
