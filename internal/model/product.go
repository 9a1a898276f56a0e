package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategorySarees      Category = "sarees"
	CategoryKurtis      Category = "kurtis"
	CategoryWestern     Category = "western"
	CategoryEthnic      Category = "ethnic"
	CategoryAccessories Category = "accessories"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    Category           `bson:"category" json:"category"`
	Images      []string           `bson:"images" json:"images"`
	Sizes       []string           `bson:"sizes,omitempty" json:"sizes,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Thumbnail devuelve la primera imagen, o "" si no tiene.
func (p *Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductFilter se traduce a bson en el repositorio.
type ProductFilter struct {
	Category   Category
	Search     string
	ActiveOnly bool
}
