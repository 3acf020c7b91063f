package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockedItemType distinguishes the kinds of things a user can block.
type BlockedItemType string

const (
	BlockedExercise BlockedItemType = "exercise"
	BlockedMeal     BlockedItemType = "meal"
)

// BlockedItem is a permanent exclusion. ItemID is a string so it can hold
// the hex id of either an exercise or a meal.
type BlockedItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ItemType  BlockedItemType    `bson:"itemType" json:"itemType"`
	ItemID    string             `bson:"itemId" json:"itemId"`
	ItemName  string             `bson:"itemName" json:"itemName"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// BlockedSet indexes blocked item ids by type for quick exclusion checks.
type BlockedSet map[BlockedItemType]map[string]struct{}

// NewBlockedSet builds a BlockedSet from a list of items.
func NewBlockedSet(items []BlockedItem) BlockedSet {
	set := BlockedSet{}
	for _, it := range items {
		if set[it.ItemType] == nil {
			set[it.ItemType] = map[string]struct{}{}
		}
		set[it.ItemType][it.ItemID] = struct{}{}
	}
	return set
}

// Has reports whether id of type t is blocked.
func (b BlockedSet) Has(t BlockedItemType, id primitive.ObjectID) bool {
	_, ok := b[t][id.Hex()]
	return ok
}
