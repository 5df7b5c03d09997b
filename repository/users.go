package repository

import (
	"context"
	"errors"
	"fmt"
	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		collection: db.Collection("users"),
	}
}

func (m *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findOne(ctx, bson.M{"email": email})
}

func (m *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := m.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create inserts user, rejecting an email that is already registered
func (m *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	count, err := m.collection.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}

	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	user.ID = primitive.NewObjectID()
	if _, err := m.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// MarkVerified flags the account holding token as verified and consumes the token
func (m *mongoUserRepository) MarkVerified(ctx context.Context, token string) error {
	result, err := m.collection.UpdateOne(ctx,
		bson.M{"verification_token": token},
		bson.M{"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) UpdateDetails(ctx context.Context, id string, details models.AccountDetails) error {
	return m.set(ctx, id, bson.M{
		"full_name":    details.FullName,
		"gender":       details.Gender,
		"email":        details.Email,
		"phone_number": details.PhoneNumber,
		"dob":          details.DOB,
	})
}

func (m *mongoUserRepository) SaveAddresses(ctx context.Context, id string, addresses []models.Address) error {
	return m.set(ctx, id, bson.M{"addresses": addresses})
}

func (m *mongoUserRepository) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
