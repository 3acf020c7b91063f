package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryExport stores metadata about a workout history export.
// The file itself lives in object storage.
type HistoryExport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ObjectKey   string             `bson:"objectKey" json:"-"` // Key in the bucket, internal use
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	FromDate    string             `bson:"fromDate" json:"fromDate"`
	ToDate      string             `bson:"toDate" json:"toDate"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
