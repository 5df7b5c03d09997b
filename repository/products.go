package repository

import (
	"context"
	"errors"
	"fmt"
	"go-storefront/models"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

// List returns every product, or those whose name contains keyword
// (case-insensitive) when keyword is set
func (m *mongoProductRepository) List(ctx context.Context, keyword string) ([]models.Product, error) {
	filter := bson.M{}
	if keyword != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (m *mongoProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var product models.Product
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (m *mongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	if _, err := m.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (m *mongoProductRepository) Update(ctx context.Context, id string, product models.Product) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"price":       product.Price,
		"category":    product.Category,
		"description": product.Description,
		"images":      product.Images,
	}}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *mongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
