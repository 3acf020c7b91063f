package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meal is a catalog meal.
type Meal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Foods        []string           `bson:"foods" json:"foods"`
	Calories     float64            `bson:"calories" json:"calories"`
	Protein      *float64           `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs        *float64           `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat          *float64           `bson:"fat,omitempty" json:"fat,omitempty"`
	Instructions []string           `bson:"instructions,omitempty" json:"instructions,omitempty"`
	MealType     string             `bson:"mealType,omitempty" json:"mealType,omitempty"` // breakfast, lunch, ...
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// DailyMeal links a session to a planned catalog meal.
type DailyMeal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	MealID    primitive.ObjectID `bson:"mealId" json:"mealId"`
	Order     int                `bson:"order" json:"order"`
	Eaten     bool               `bson:"eaten" json:"eaten"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// MealLog is a user-entered record of something eaten, independent of any session.
type MealLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Date      string             `bson:"date" json:"date"`
	Name      string             `bson:"name" json:"name"`
	Foods     []string           `bson:"foods,omitempty" json:"foods,omitempty"`
	Calories  float64            `bson:"calories" json:"calories"`
	Protein   *float64           `bson:"protein,omitempty" json:"protein,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
