package models

import (
	"encoding/json"
	"time"
)

// Typed payload shapes for the known collections. The store itself is
// payload-agnostic; these types exist for the UI boundary that produces and
// consumes records.

// Task is a to-do item
type Task struct {
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
	Due        *time.Time `json:"due,omitempty"`
	Done       bool       `json:"done"`
	AssignedTo string     `json:"assigned_to,omitempty"`
}

// ListItem is an entry on a shared list (shopping, packing, etc.)
type ListItem struct {
	List    string `json:"list"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Event is a calendar entry
type Event struct {
	Title    string     `json:"title"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Location string     `json:"location,omitempty"`
}

// Transaction is a budget entry; Amount is in cents to avoid float drift
type Transaction struct {
	Amount   int64     `json:"amount"`
	Category string    `json:"category"`
	Note     string    `json:"note,omitempty"`
	Date     time.Time `json:"date"`
}

// Message is a family chat message
type Message struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// DevotionalEntry is a devotional journal entry
type DevotionalEntry struct {
	Title   string    `json:"title"`
	Passage string    `json:"passage,omitempty"`
	Body    string    `json:"body"`
	Date    time.Time `json:"date"`
}

// MealPlanEntry assigns a dish to a day and meal slot
type MealPlanEntry struct {
	Date time.Time `json:"date"`
	Meal string    `json:"meal"`
	Dish string    `json:"dish"`
}

// MarshalPayload encodes a typed payload for storage in a Record
func MarshalPayload(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
