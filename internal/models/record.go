package models

import (
	"encoding/json"
	"time"
)

// Record is a single owned item in the local store. Every record has exactly
// one owner; family-level visibility is derived from the owner's family at
// read time, never stored on the record itself. The payload is collection
// specific and kept opaque so unknown collections survive import.
type Record struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	Collection string          `json:"collection"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Collection tags for the known record collections
const (
	CollectionTasks        = "tasks"
	CollectionLists        = "lists"
	CollectionEvents       = "events"
	CollectionTransactions = "transactions"
	CollectionMessages     = "messages"
	CollectionDevotionals  = "devotionals"
	CollectionMeals        = "meals"
)

// KnownCollections lists every collection the exporter walks. Imports accept
// collections outside this list by skipping them with a warning.
var KnownCollections = []string{
	CollectionTasks,
	CollectionLists,
	CollectionEvents,
	CollectionTransactions,
	CollectionMessages,
	CollectionDevotionals,
	CollectionMeals,
}

// IsKnownCollection reports whether tag is one of the collections this
// version of the app understands
func IsKnownCollection(tag string) bool {
	for _, known := range KnownCollections {
		if known == tag {
			return true
		}
	}
	return false
}
