package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/aprenmaker/hubauth/core/kvstore"
)

var _ kvstore.Store = (*Store)(nil)

type entry struct {
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store is a kvstore.Store over one collection. Entries of different hubs
// share the collection and are told apart by namespace.
type Store struct {
	coll      *mongo.Collection
	namespace string
}

// NewStore returns a store over db.Collection(cfg.Collection).
func NewStore(db *mongo.Database, cfg Config) *Store {
	return &Store{coll: db.Collection(cfg.Collection), namespace: cfg.Namespace}
}

// EnsureIndexes creates the unique (namespace, key) index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (s *Store) filter(key string) bson.D {
	return bson.D{{Key: "namespace", Value: s.namespace}, {Key: "key", Value: key}}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var e entry
	err := s.coll.FindOne(ctx, s.filter(key)).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %q: %w", key, err)
	}
	return e.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	doc := entry{Namespace: s.namespace, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, s.filter(key), doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, s.filter(key)); err != nil {
		return fmt.Errorf("mongo delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.D{{Key: "namespace", Value: s.namespace}}
	if prefix != "" {
		filter = append(filter, bson.E{Key: "key", Value: bson.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}})
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().
		SetProjection(bson.D{{Key: "key", Value: 1}}).
		SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo keys %q: %w", prefix, err)
	}

	var found []entry
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("mongo keys %q: %w", prefix, err)
	}
	keys := make([]string, 0, len(found))
	for _, e := range found {
		keys = append(keys, e.Key)
	}
	return keys, nil
}
