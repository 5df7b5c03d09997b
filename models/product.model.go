package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog record served by the content store
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Price       string             `bson:"price" json:"price" validate:"required,numeric,excludes=-"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	Images      []string           `bson:"images" json:"images"`
}
