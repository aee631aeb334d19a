package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongoopts "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const DefaultCollection = "notifications"

// MongoStorage persists records in a single collection keyed by _id.
type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

// EnsureIndexes creates the index backing FindFailed. Safe to call on every start.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		Options: mongoopts.Index().SetName("status_created_at"),
	})
	if err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}
	return nil
}

func (s *MongoStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, n.ID)
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, id string) (Notification, error) {
	var n Notification
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Notification{}, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (s *MongoStorage) Update(ctx context.Context, id string, p Patch) (Notification, error) {
	if err := p.Validate(); err != nil {
		return Notification{}, err
	}
	update, err := buildUpdate(p, time.Now())
	if err != nil {
		return Notification{}, err
	}

	var n Notification
	err = s.coll.FindOneAndUpdate(ctx, updateFilter(id, p), update,
		mongoopts.FindOneAndUpdate().SetReturnDocument(mongoopts.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the record is gone or the retry count guard rejected the write.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return Notification{}, getErr
		}
		return Notification{}, fmt.Errorf("%w: retry count cannot decrease", ErrInvalidState)
	}
	if err != nil {
		return Notification{}, fmt.Errorf("update notification: %w", err)
	}
	return n, nil
}

func (s *MongoStorage) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *MongoStorage) FindFailed(ctx context.Context) ([]Notification, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "status", Value: StatusFailed}},
		mongoopts.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find failed notifications: %w", err)
	}

	out := make([]Notification, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode failed notifications: %w", err)
	}
	return out, nil
}

// updateFilter guards the non-decreasing retry count on the server side.
func updateFilter(id string, p Patch) bson.D {
	filter := bson.D{{Key: "_id", Value: id}}
	if p.RetryCount.Set {
		filter = append(filter, bson.E{Key: "retry_count", Value: bson.D{{Key: "$lte", Value: p.RetryCount.Value}}})
	}
	return filter
}

// buildUpdate translates p into $set and $unset documents. Metadata keys are
// merged individually so concurrent writers of different keys do not clobber each other.
func buildUpdate(p Patch, now time.Time) (bson.D, error) {
	set := bson.D{}
	unset := bson.D{}

	if p.Subject.Set {
		set = append(set, bson.E{Key: "subject", Value: p.Subject.Value})
	}
	if p.Content.Set {
		set = append(set, bson.E{Key: "content", Value: p.Content.Value})
	}
	if p.MaxRetries.Set {
		set = append(set, bson.E{Key: "max_retries", Value: p.MaxRetries.Value})
	}
	if p.Status.Set {
		set = append(set, bson.E{Key: "status", Value: p.Status.Value})
	}
	if p.ErrorMessage.Set {
		if p.ErrorMessage.Value == "" {
			unset = append(unset, bson.E{Key: "error_message", Value: ""})
		} else {
			set = append(set, bson.E{Key: "error_message", Value: p.ErrorMessage.Value})
		}
	}
	if p.SentAt.Set {
		if p.SentAt.Value == nil {
			unset = append(unset, bson.E{Key: "sent_at", Value: ""})
		} else {
			set = append(set, bson.E{Key: "sent_at", Value: *p.SentAt.Value})
		}
	}
	if p.RetryCount.Set {
		set = append(set, bson.E{Key: "retry_count", Value: p.RetryCount.Value})
	}
	if p.Metadata.Set {
		for k, v := range p.Metadata.Value {
			if k == "" || strings.ContainsAny(k, ".$") {
				return nil, fmt.Errorf("%w: invalid metadata key %q", ErrValidation, k)
			}
			if v == nil {
				unset = append(unset, bson.E{Key: "metadata." + k, Value: ""})
				continue
			}
			set = append(set, bson.E{Key: "metadata." + k, Value: v})
		}
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	set = append(set, bson.E{Key: "updated_at", Value: updatedAt})

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update, nil
}
