package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyLog tracks non-workout daily execution: steps and water.
type DailyLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Date      string             `bson:"date" json:"date"`
	Steps     int                `bson:"steps" json:"steps"`
	WaterMl   int                `bson:"waterMl" json:"waterMl"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
