package items

import "time"

// Item represents a record in the items DynamoDB table. The same struct
// is served over the API, hence the json tags.
type Item struct {
	ID          string    `json:"id" dynamodbav:"item_id"` // PK
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	Price       float64   `json:"price" dynamodbav:"price"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// ItemFields holds the caller-writable attributes of an item. The id and
// creation time are always assigned by the store.
type ItemFields struct {
	Name        string
	Description string
	Price       float64
}
