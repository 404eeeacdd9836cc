package models

import "time"

// Attachment is one uploaded file: its client-supplied name plus content.
type Attachment struct {
	Name string
	Data []byte
}

// SubmissionRequest is an in-flight submission. It is built per user
// action, validated, and then either persisted or discarded.
type SubmissionRequest struct {
	ServiceID   string
	Principal   Principal
	Fields      map[string]string
	Attachments []Attachment
}

// SubmissionRecord is the durable result of a successful submission.
// Records are write-once: no update or delete exists.
type SubmissionRecord struct {
	ServiceID       string            `json:"service"`
	OwnerUsername   string            `json:"username"`
	CreatedAt       time.Time         `json:"createdAt"`
	Fields          map[string]string `json:"fields"`
	AttachmentNames []string          `json:"files"`
	// Location is the store-relative path of the record's folder,
	// unique for the lifetime of the store.
	Location string `json:"location"`
}

// TimestampLayout is the second-resolution format used in folder names
// and in the persisted metadata's timestamp key.
const TimestampLayout = "20060102_150405"
