package repository

import (
	"context"
	"fmt"
	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (m *mongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// ListByUser returns the orders of userID, newest first
func (m *mongoOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
