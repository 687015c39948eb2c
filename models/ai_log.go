package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AILog stores LLM usage logs (system monitoring purpose)
// Collection: ai_logs
type AILog struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryKey    string             `bson:"category_key" json:"category_key"`
	ModelName      string             `bson:"model_name" json:"model_name"`
	DurationMs     int64              `bson:"duration_ms" json:"duration_ms"`
	Success        bool               `bson:"success" json:"success"`
	ErrorMessage   *string            `bson:"error_message,omitempty" json:"error_message,omitempty"`
	OutputResponse string             `bson:"output_response" json:"output_response"`
	RequestedAt    time.Time          `bson:"requested_at" json:"requested_at"`
	CompletedAt    time.Time          `bson:"completed_at" json:"completed_at"`
}
