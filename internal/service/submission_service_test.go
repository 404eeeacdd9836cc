package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rdservicos/portal/internal/catalog"
	"github.com/rdservicos/portal/internal/models"
	"github.com/rdservicos/portal/internal/service"
	"github.com/rdservicos/portal/internal/store"
)

const testServices = `
IRPF:
  allowed_types: [pdf, xlsx, csv]
  folder_key: [cpf, ano]
  fields:
    - name: nome
      label: Nome Completo
      required: true
    - name: cpf
      label: CPF
      required: true
    - name: ano
      label: Ano de Referência
      required: true
BI:
  allowed_types: [csv, xlsx]
  fields:
    - name: descricao
      label: Descrição do Pedido
      required: true
`

var (
	alice = models.Principal{Username: "alice", DisplayName: "Alice Silva"}
	bob   = models.Principal{Username: "bob", DisplayName: "Bob Santos"}
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testServices), 0o644))
	return catalog.Load(path)
}

func newStore(t *testing.T) *store.FS {
	t.Helper()
	st, err := store.NewFS(t.TempDir())
	require.NoError(t, err)
	return st
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func irpfRequest(p models.Principal) models.SubmissionRequest {
	return models.SubmissionRequest{
		ServiceID: "IRPF",
		Principal: p,
		Fields:    map[string]string{"nome": "Alice Silva", "cpf": "12345678901", "ano": "2023"},
		Attachments: []models.Attachment{
			{Name: "doc.pdf", Data: []byte("%PDF-1.4 conteudo")},
		},
	}
}

func countRecords(t *testing.T, st store.Store) int {
	t.Helper()
	n := 0
	require.NoError(t, st.Walk(func(string, []byte) error { n++; return nil }))
	return n
}

func TestSubmitHappyPath(t *testing.T) {
	// given
	st := newStore(t)
	at := time.Date(2023, 4, 2, 9, 30, 15, 0, time.Local)
	subSvc := service.NewSubmissionService(newCatalog(t), st).WithClock(fixedClock(at))
	pedidoSvc := service.NewPedidoService(st)

	// when
	rec, err := subSvc.Submit(context.Background(), irpfRequest(alice))

	// then
	require.NoError(t, err)
	require.Equal(t, "alice", rec.OwnerUsername)
	require.Equal(t, "IRPF", rec.ServiceID)
	require.Equal(t, "IRPF/12345678901_2023_20230402_093015", rec.Location)
	require.Equal(t, []string{"doc.pdf"}, rec.AttachmentNames)

	require.True(t, st.Exists(rec.Location))
	require.True(t, st.FileExists(rec.Location, "doc.pdf"))
	require.True(t, st.FileExists(rec.Location, store.MetadataFile))

	pedidos, err := pedidoSvc.ListFor(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, pedidos, 1)
	require.Equal(t, "IRPF", pedidos[0].Servico)
	require.Equal(t, 1, pedidos[0].Arquivos)
	require.Equal(t, "Alice Silva", pedidos[0].Descricao)
	require.Equal(t, "02/04/2023 09:30:15", pedidos[0].DataHora)
	require.Equal(t, rec.Location, pedidos[0].Pasta)
}

func TestSubmitRejections(t *testing.T) {
	st := newStore(t)
	subSvc := service.NewSubmissionService(newCatalog(t), st)

	tests := []struct {
		name     string
		mutate   func(*models.SubmissionRequest)
		kind     service.SubmissionErrorKind
		field    string
		filename string
	}{
		{
			name:   "unknown service",
			mutate: func(r *models.SubmissionRequest) { r.ServiceID = "Juridico" },
			kind:   service.UnknownService,
		},
		{
			name:   "missing field",
			mutate: func(r *models.SubmissionRequest) { delete(r.Fields, "cpf") },
			kind:   service.MissingField,
			field:  "cpf",
		},
		{
			name:   "blank field counts as missing",
			mutate: func(r *models.SubmissionRequest) { r.Fields["nome"] = "   " },
			kind:   service.MissingField,
			field:  "nome",
		},
		{
			name:   "no attachments",
			mutate: func(r *models.SubmissionRequest) { r.Attachments = nil },
			kind:   service.NoAttachments,
		},
		{
			name: "disallowed extension",
			mutate: func(r *models.SubmissionRequest) {
				r.Attachments = []models.Attachment{{Name: "malware.exe", Data: []byte{0x4d}}}
			},
			kind:     service.DisallowedExtension,
			filename: "malware.exe",
		},
		{
			name: "extensionless file",
			mutate: func(r *models.SubmissionRequest) {
				r.Attachments = []models.Attachment{{Name: "README", Data: []byte("x")}}
			},
			kind:     service.DisallowedExtension,
			filename: "README",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := irpfRequest(alice)
			tc.mutate(&req)

			rec, err := subSvc.Submit(context.Background(), req)

			require.Nil(t, rec)
			se, ok := service.AsSubmissionError(err)
			require.True(t, ok)
			require.Equal(t, tc.kind, se.Kind)
			require.Equal(t, tc.field, se.Field)
			require.Equal(t, tc.filename, se.Filename)
		})
	}

	// nothing was ever persisted
	require.Zero(t, countRecords(t, st))
}

func TestSubmitDisallowedExtensionPersistsNothing(t *testing.T) {
	// bob sends BI data as an executable; the submission is rejected and
	// his history stays empty
	st := newStore(t)
	subSvc := service.NewSubmissionService(newCatalog(t), st)

	req := models.SubmissionRequest{
		ServiceID:   "BI",
		Principal:   bob,
		Fields:      map[string]string{"descricao": "vendas 2023"},
		Attachments: []models.Attachment{{Name: "data.exe", Data: []byte{0x4d, 0x5a}}},
	}
	_, err := subSvc.Submit(context.Background(), req)

	se, ok := service.AsSubmissionError(err)
	require.True(t, ok)
	require.Equal(t, service.DisallowedExtension, se.Kind)
	require.Equal(t, "data.exe", se.Filename)

	pedidos, err := service.NewPedidoService(st).ListFor(context.Background(), bob)
	require.NoError(t, err)
	require.Empty(t, pedidos)
}

func TestSubmitSameSecondCollision(t *testing.T) {
	// two submissions from the same principal inside one clock second
	// publish under distinct locations via the numeric disambiguator
	st := newStore(t)
	at := time.Date(2023, 4, 2, 9, 30, 15, 0, time.Local)
	subSvc := service.NewSubmissionService(newCatalog(t), st).WithClock(fixedClock(at))

	first, err := subSvc.Submit(context.Background(), irpfRequest(alice))
	require.NoError(t, err)
	second, err := subSvc.Submit(context.Background(), irpfRequest(alice))
	require.NoError(t, err)

	require.NotEqual(t, first.Location, second.Location)
	require.Equal(t, first.Location+"-2", second.Location)

	pedidos, err := service.NewPedidoService(st).ListFor(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, pedidos, 2)
}

func TestSubmitConflictAfterBoundedRetries(t *testing.T) {
	st := newStore(t)
	at := time.Date(2023, 4, 2, 9, 30, 15, 0, time.Local)
	subSvc := service.NewSubmissionService(newCatalog(t), st).WithClock(fixedClock(at))

	// exhaust the base location and every disambiguated variant
	for i := 0; i < 10; i++ {
		_, err := subSvc.Submit(context.Background(), irpfRequest(alice))
		require.NoError(t, err)
	}

	_, err := subSvc.Submit(context.Background(), irpfRequest(alice))
	se, ok := service.AsSubmissionError(err)
	require.True(t, ok)
	require.Equal(t, service.LocationConflict, se.Kind)

	// the failed attempt left nothing behind
	pedidos, err := service.NewPedidoService(st).ListFor(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, pedidos, 10)
}

// flakyStore fails writing one specific staged file, simulating a disk
// error in the middle of a multi-file submission.
type flakyStore struct {
	store.Store
	failOn string
}

func (f *flakyStore) Stage() (store.Staging, error) {
	staging, err := f.Store.Stage()
	if err != nil {
		return nil, err
	}
	return &flakyStaging{Staging: staging, failOn: f.failOn}, nil
}

type flakyStaging struct {
	store.Staging
	failOn string
}

func (f *flakyStaging) WriteFile(name string, data []byte) error {
	if name == f.failOn {
		return fmt.Errorf("write %s: %w", name, errors.New("no space left on device"))
	}
	return f.Staging.WriteFile(name, data)
}

func TestSubmitMidWriteFailureLeavesNoVisibleRecord(t *testing.T) {
	// given: the second of three attachments fails to write
	fsStore := newStore(t)
	st := &flakyStore{Store: fsStore, failOn: "extrato.csv"}
	subSvc := service.NewSubmissionService(newCatalog(t), st)

	req := irpfRequest(alice)
	req.Attachments = []models.Attachment{
		{Name: "doc.pdf", Data: []byte("a")},
		{Name: "extrato.csv", Data: []byte("b")},
		{Name: "notas.xlsx", Data: []byte("c")},
	}

	// when
	rec, err := subSvc.Submit(context.Background(), req)

	// then: a typed rejection, and the reader sees zero records, never
	// one with a partial file set
	require.Nil(t, rec)
	se, ok := service.AsSubmissionError(err)
	require.True(t, ok)
	require.Equal(t, service.PersistenceFailure, se.Kind)
	require.ErrorContains(t, se, "no space left on device")

	require.Zero(t, countRecords(t, fsStore))
	pedidos, listErr := service.NewPedidoService(fsStore).ListFor(context.Background(), alice)
	require.NoError(t, listErr)
	require.Empty(t, pedidos)
}
