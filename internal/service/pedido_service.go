package service

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/rdservicos/portal/internal/models"
	"github.com/rdservicos/portal/internal/store"
)

// ErrPedidoNotFound is returned by Get when the caller owns no record
// at the requested location.
var ErrPedidoNotFound = errors.New("pedido not found")

// PedidoService reconstructs a user's submission history by scanning
// the store's published metadata. Only metadata and attachment names
// are read; attachment bytes are never touched.
type PedidoService struct {
	store store.Store
}

func NewPedidoService(st store.Store) *PedidoService {
	return &PedidoService{store: st}
}

// ListFor returns the display rows for every record owned by principal,
// most recent first. Unparsable metadata and records with missing
// attachments are skipped with a warning; an empty history is an empty
// slice, never an error.
func (s *PedidoService) ListFor(ctx context.Context, principal models.Principal) ([]models.Pedido, error) {
	records, err := s.recordsFor(ctx, principal)
	if err != nil {
		return nil, err
	}
	pedidos := make([]models.Pedido, 0, len(records))
	for _, rec := range records {
		pedidos = append(pedidos, toPedido(rec))
	}
	return pedidos, nil
}

// Get returns one of principal's records by its location. Records of
// other owners are indistinguishable from absent ones.
func (s *PedidoService) Get(ctx context.Context, principal models.Principal, location string) (*models.SubmissionRecord, error) {
	records, err := s.recordsFor(ctx, principal)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Location == location {
			return rec, nil
		}
	}
	return nil, ErrPedidoNotFound
}

func (s *PedidoService) recordsFor(ctx context.Context, principal models.Principal) ([]*models.SubmissionRecord, error) {
	var records []*models.SubmissionRecord
	err := s.store.Walk(func(location string, raw []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := store.DecodeMetadata(location, raw)
		if err != nil {
			log.Printf("Warning: skipping unreadable metadata at %s: %v", location, err)
			return nil
		}
		if rec.OwnerUsername != principal.Username {
			return nil
		}
		for _, name := range rec.AttachmentNames {
			if !s.store.FileExists(location, name) {
				log.Printf("Warning: skipping %s: declared file %q is missing", location, name)
				return nil
			}
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Most recent first; ties fall back to the location so repeated
	// listings are identical.
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Location < records[j].Location
	})
	return records, nil
}

func toPedido(rec *models.SubmissionRecord) models.Pedido {
	descricao := rec.Fields["descricao"]
	if descricao == "" {
		descricao = rec.Fields["nome"]
	}
	if descricao == "" {
		descricao = "N/A"
	}
	return models.Pedido{
		Servico:   rec.ServiceID,
		DataHora:  rec.CreatedAt.Format("02/01/2006 15:04:05"),
		Descricao: descricao,
		Arquivos:  len(rec.AttachmentNames),
		Pasta:     rec.Location,
	}
}
