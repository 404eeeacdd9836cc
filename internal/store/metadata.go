package store

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rdservicos/portal/internal/models"
)

// The metadata object keeps the layout the portal has always written:
// service, username and the service-specific fields as top-level keys,
// a second-resolution timestamp, and the attachment names under files.

// EncodeMetadata renders a record into its persisted metadata form.
func EncodeMetadata(rec *models.SubmissionRecord) ([]byte, error) {
	doc := map[string]any{
		"service":   rec.ServiceID,
		"username":  rec.OwnerUsername,
		"timestamp": rec.CreatedAt.Format(models.TimestampLayout),
		"files":     rec.AttachmentNames,
	}
	for k, v := range rec.Fields {
		switch k {
		case "service", "username", "timestamp", "files":
			return nil, fmt.Errorf("metadata: field name %q collides with a reserved key", k)
		}
		doc[k] = v
	}
	return yaml.Marshal(doc)
}

// DecodeMetadata parses persisted metadata back into a record. location
// is stored on the returned record as-is. Unknown scalar keys become
// form fields; anything structurally off (missing reserved keys, bad
// timestamp) is an error the caller is expected to log and skip.
func DecodeMetadata(location string, raw []byte) (*models.SubmissionRecord, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("metadata: parse %s: %w", location, err)
	}

	service, ok := doc["service"].(string)
	if !ok || service == "" {
		return nil, fmt.Errorf("metadata: %s has no service key", location)
	}
	username, ok := doc["username"].(string)
	if !ok || username == "" {
		return nil, fmt.Errorf("metadata: %s has no username key", location)
	}
	ts, ok := doc["timestamp"].(string)
	if !ok {
		return nil, fmt.Errorf("metadata: %s has no timestamp key", location)
	}
	createdAt, err := time.ParseInLocation(models.TimestampLayout, ts, time.Local)
	if err != nil {
		return nil, fmt.Errorf("metadata: %s has bad timestamp %q: %w", location, ts, err)
	}

	var files []string
	if rawFiles, ok := doc["files"].([]any); ok {
		for _, f := range rawFiles {
			files = append(files, fmt.Sprint(f))
		}
	}

	fields := map[string]string{}
	for k, v := range doc {
		switch k {
		case "service", "username", "timestamp", "files":
			continue
		}
		switch v.(type) {
		case string, int, int64, float64, bool:
			fields[k] = fmt.Sprint(v)
		}
	}

	return &models.SubmissionRecord{
		ServiceID:       service,
		OwnerUsername:   username,
		CreatedAt:       createdAt,
		Fields:          fields,
		AttachmentNames: files,
		Location:        location,
	}, nil
}
