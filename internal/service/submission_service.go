package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/rdservicos/portal/internal/catalog"
	"github.com/rdservicos/portal/internal/models"
	"github.com/rdservicos/portal/internal/obs"
	"github.com/rdservicos/portal/internal/store"
)

// Two submissions landing on the same folder name differ only by the
// numeric disambiguator, so a handful of retries is always enough.
const maxPublishAttempts = 10

// SubmissionService validates submissions against the service catalog
// and persists them atomically: every file is staged first, then one
// publish step makes the whole record visible.
type SubmissionService struct {
	catalog *catalog.Catalog
	store   store.Store
	now     func() time.Time
}

func NewSubmissionService(cat *catalog.Catalog, st store.Store) *SubmissionService {
	return &SubmissionService{catalog: cat, store: st, now: time.Now}
}

// WithClock overrides the wall clock. Tests use it to force same-second
// folder-name collisions.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// Submit runs the full workflow: resolve the service definition,
// validate fields and attachments, derive a unique location and persist
// the record. On any rejection nothing is persisted and the returned
// *SubmissionError names the exact failure.
func (s *SubmissionService) Submit(ctx context.Context, req models.SubmissionRequest) (*models.SubmissionRecord, error) {
	def, ok := s.catalog.Lookup(req.ServiceID)
	if !ok {
		// caller-supplied IDs stay out of the metric label space
		obs.RecordSubmission("unknown", "rejected")
		return nil, &SubmissionError{Kind: UnknownService}
	}

	for _, f := range def.RequiredFields() {
		if strings.TrimSpace(req.Fields[f.Name]) == "" {
			obs.RecordSubmission(req.ServiceID, "rejected")
			return nil, &SubmissionError{Kind: MissingField, Field: f.Name}
		}
	}

	if len(req.Attachments) == 0 {
		obs.RecordSubmission(req.ServiceID, "rejected")
		return nil, &SubmissionError{Kind: NoAttachments}
	}
	for _, a := range req.Attachments {
		ext := strings.TrimPrefix(path.Ext(a.Name), ".")
		if ext == "" || !def.AllowsExtension(ext) {
			obs.RecordSubmission(req.ServiceID, "rejected")
			return nil, &SubmissionError{Kind: DisallowedExtension, Filename: a.Name}
		}
	}

	createdAt := s.now()
	fields := make(map[string]string, len(req.Fields))
	for k, v := range req.Fields {
		fields[k] = v
	}
	names := make([]string, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		names = append(names, a.Name)
	}
	rec := &models.SubmissionRecord{
		ServiceID:       req.ServiceID,
		OwnerUsername:   req.Principal.Username,
		CreatedAt:       createdAt,
		Fields:          fields,
		AttachmentNames: names,
	}

	record, err := s.persist(ctx, rec, req.Attachments, def)
	if err != nil {
		obs.RecordSubmission(req.ServiceID, "rejected")
		return nil, err
	}
	obs.RecordSubmission(req.ServiceID, "accepted")
	return record, nil
}

// persist stages metadata plus every attachment and publishes the set
// under a derived location, retrying with a numeric disambiguator when
// the location is already taken.
func (s *SubmissionService) persist(ctx context.Context, rec *models.SubmissionRecord, attachments []models.Attachment, def models.ServiceDefinition) (*models.SubmissionRecord, error) {
	meta, err := store.EncodeMetadata(rec)
	if err != nil {
		return nil, &SubmissionError{Kind: PersistenceFailure, Cause: err}
	}

	staging, err := s.store.Stage()
	if err != nil {
		return nil, &SubmissionError{Kind: PersistenceFailure, Cause: err}
	}
	if err := staging.WriteFile(store.MetadataFile, meta); err != nil {
		staging.Discard()
		return nil, &SubmissionError{Kind: PersistenceFailure, Cause: err}
	}
	for _, a := range attachments {
		if err := ctx.Err(); err != nil {
			staging.Discard()
			return nil, &SubmissionError{Kind: PersistenceFailure, Cause: err}
		}
		if err := staging.WriteFile(a.Name, a.Data); err != nil {
			staging.Discard()
			return nil, &SubmissionError{Kind: PersistenceFailure, Cause: err}
		}
	}

	base := s.deriveLocation(rec, def)
	for attempt := 1; attempt <= maxPublishAttempts; attempt++ {
		location := base
		if attempt > 1 {
			location = fmt.Sprintf("%s-%d", base, attempt)
		}
		err := staging.Publish(location)
		if err == nil {
			rec.Location = location
			return rec, nil
		}
		if !errors.Is(err, store.ErrExists) {
			staging.Discard()
			return nil, &SubmissionError{Kind: PersistenceFailure, Cause: err}
		}
	}
	staging.Discard()
	return nil, &SubmissionError{Kind: LocationConflict}
}

// deriveLocation builds <service>/<discriminator>_<timestamp>. The
// discriminator joins the catalog's folder-key field values (e.g.
// cpf_ano for IRPF); services without a folder key get the generic
// "pedido" label.
func (s *SubmissionService) deriveLocation(rec *models.SubmissionRecord, def models.ServiceDefinition) string {
	var parts []string
	for _, key := range def.FolderKey {
		if v := sanitizeComponent(rec.Fields[key]); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "pedido")
	}
	parts = append(parts, rec.CreatedAt.Format(models.TimestampLayout))
	return sanitizeComponent(rec.ServiceID) + "/" + strings.Join(parts, "_")
}

// sanitizeComponent strips anything that is not safe in a single path
// segment: separators, control characters and exotic punctuation all
// collapse to dashes.
func sanitizeComponent(v string) string {
	v = strings.TrimSpace(v)
	var b strings.Builder
	for _, r := range v {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
