package api

import (
	"time"

	"github.com/gofrs/uuid"
)

// File is an uploaded image asset
//
// swagger:model
type File struct {
	// unique ID
	//
	// swagger:strfmt uuid4
	ID uuid.UUID `json:"id"`

	// public URL where the file can be fetched
	//
	// swagger:strfmt url
	URL string `json:"url"`

	// the time the URL expires
	//
	// swagger:strfmt date-time
	URLExpiration time.Time `json:"urlExpiration"`

	// filename as uploaded
	Name string `json:"name"`

	// file size in bytes
	Size int `json:"size"`

	// MIME content type as detected from the file content
	ContentType string `json:"contentType"`
}

// FileUploadOutput is the response to a successful upload. SecureURL carries
// the same value as URL under the name mobile clients expect.
//
// swagger:model
type FileUploadOutput struct {
	File
	SecureURL string `json:"secure_url"`
}
