package model

import "time"

// Car represents a car listing in the database. Every car belongs to
// exactly one owner; OwnerID is set at creation and never reassigned.
type Car struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCarRequest carries the form fields of a create call. Image
// files travel separately as multipart parts.
type CreateCarRequest struct {
	Title       string
	Description string
	Tags        []string
}

// UpdateCarRequest carries the form fields of an update call. Pointer
// and nil-able fields distinguish "omitted" from "set to empty": a nil
// field leaves the stored value untouched.
type UpdateCarRequest struct {
	Title       *string
	Description *string
	Tags        []string
}

// DeleteCarResponse confirms a delete call.
type DeleteCarResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
