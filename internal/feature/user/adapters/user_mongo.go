// Package adapters provides repository implementations for the user feature.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/usecase"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

// userMongo is a MongoDB implementation of the UserRepository interface.
type userMongo struct {
	users *mongodriver.Collection
}

// Compile-time check to ensure userMongo implements UserRepository.
var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo creates a new userMongo backed by the users collection of db.
func NewUserMongo(db *mongodriver.Database) *userMongo {
	return &userMongo{users: db.Collection(UsersCollection)}
}

// Create inserts the user document and returns the ObjectID assigned by the driver.
func (r *userMongo) Create(ctx context.Context, u *entity.User) (string, error) {
	const op = "adapters/mongo/Create"

	doc := bson.D{
		{Key: entity.FieldName, Value: u.Name},
		{Key: entity.FieldEmail, Value: u.Email},
		{Key: entity.FieldPassword, Value: u.Password},
	}
	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%s: unexpected inserted id type %T", op, res.InsertedID)
	}
	u.ID = oid.Hex()
	return u.ID, nil
}

// FindAll returns every user in natural order.
func (r *userMongo) FindAll(ctx context.Context) ([]entity.User, error) {
	const op = "adapters/mongo/FindAll"

	cur, err := r.users.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	users := make([]entity.User, 0)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		users = append(users, documentToUser(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}
	return users, nil
}

// FindByID returns the user with the given ID.
// A malformed ID is reported as usecase.ErrUserNotFound, like a missing document.
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	const op = "adapters/mongo/FindByID"

	oid, ok := entity.ParseID(id)
	if !ok {
		return nil, usecase.ErrUserNotFound
	}

	var doc bson.M
	if err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := documentToUser(doc)
	return &u, nil
}

// UpdateByID applies fields with $set. A malformed ID matches nothing.
func (r *userMongo) UpdateByID(ctx context.Context, id string, fields map[string]any) (usecase.UpdateResult, error) {
	const op = "adapters/mongo/UpdateByID"

	oid, ok := entity.ParseID(id)
	if !ok {
		return usecase.UpdateResult{}, nil
	}

	res, err := r.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.M(fields)}},
	)
	if err != nil {
		return usecase.UpdateResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return usecase.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// DeleteByID removes the matching document. A malformed ID deletes nothing.
func (r *userMongo) DeleteByID(ctx context.Context, id string) (int64, error) {
	const op = "adapters/mongo/DeleteByID"

	oid, ok := entity.ParseID(id)
	if !ok {
		return 0, nil
	}

	res, err := r.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}

// documentToUser maps a raw document to the entity, rendering the ObjectID in hex.
func documentToUser(doc bson.M) entity.User {
	var id string
	switch v := doc[entity.FieldID].(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case nil:
	default:
		id = fmt.Sprint(v)
	}
	return entity.FromDocument(id, doc)
}
