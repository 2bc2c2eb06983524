package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jordanlanch/leadcrm/pkg/policy"
)

// MongoStore persists users in the "users" collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a store over db's users collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("users")}
}

var _ Store = (*MongoStore)(nil)

type userDoc struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	Name           string              `bson:"name"`
	Email          string              `bson:"email"`
	PasswordHash   string              `bson:"passwordHash"`
	Role           string              `bson:"role"`
	OrganizationID *primitive.ObjectID `bson:"organizationId,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt"`
}

func (s *MongoStore) Insert(ctx context.Context, u *User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(u.OrganizationID); err == nil {
		doc.OrganizationID = &oid
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return fromUserDoc(&doc), nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc userDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return fromUserDoc(&doc), nil
}

func (s *MongoStore) NamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return map[string]string{}, nil
	}

	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user names: %w", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]string, len(oids))
	for cur.Next(ctx) {
		var row struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode user name: %w", err)
		}
		names[row.ID.Hex()] = row.Name
	}
	return names, cur.Err()
}

// EnsureIndexes creates the unique email index registration relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func fromUserDoc(d *userDoc) *User {
	u := &User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         policy.Role(d.Role),
		CreatedAt:    d.CreatedAt,
	}
	if d.OrganizationID != nil {
		u.OrganizationID = d.OrganizationID.Hex()
	}
	return u
}
