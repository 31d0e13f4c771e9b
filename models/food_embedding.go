package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// FoodEmbedding is one row of the semantic index.
type FoodEmbedding struct {
	FoodID    uint            `gorm:"primaryKey;autoIncrement:false"`
	Embedding pgvector.Vector
	Document  string
	Name      string
	UpdatedAt time.Time
}

func (FoodEmbedding) TableName() string { return "food_embeddings" }
