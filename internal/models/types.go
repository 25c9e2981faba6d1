package models

// Operation names reported in write responses
const (
	OperationSave   = "SAVE"
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"

	MessageSuccess = "SUCCESS"
)

// SaveResult is the body returned after a product is created or replaced
type SaveResult struct {
	Operation string  `json:"Operation"`
	Message   string  `json:"Message"`
	Item      Product `json:"Item"`
}

// UpdateResult is the body returned after a single attribute update
type UpdateResult struct {
	Operation         string  `json:"Operation"`
	Message           string  `json:"Message"`
	UpdatedAttributes Product `json:"UpdatedAttributes"`
}

// DeleteResult is the body returned after a delete. DeletedItem is omitted
// when no product existed under the key.
type DeleteResult struct {
	Operation   string  `json:"Operation"`
	Message     string  `json:"Message"`
	DeletedItem Product `json:"deletedItem,omitempty"`
}

// ProductList is the body returned by a full table listing
type ProductList struct {
	Products []Product `json:"products"`
}

// MessageBody is the body of informational and error responses
type MessageBody struct {
	Message string `json:"Message"`
}

// NewSaveResult builds a successful save result
func NewSaveResult(item Product) *SaveResult {
	return &SaveResult{Operation: OperationSave, Message: MessageSuccess, Item: item}
}

// NewUpdateResult builds a successful update result
func NewUpdateResult(updated Product) *UpdateResult {
	return &UpdateResult{Operation: OperationUpdate, Message: MessageSuccess, UpdatedAttributes: updated}
}

// NewDeleteResult builds a successful delete result
func NewDeleteResult(deleted Product) *DeleteResult {
	return &DeleteResult{Operation: OperationDelete, Message: MessageSuccess, DeletedItem: deleted}
}
