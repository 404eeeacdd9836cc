package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rdservicos/portal/internal/auth"
	"github.com/rdservicos/portal/internal/models"
	"github.com/rdservicos/portal/internal/service"
)

const maxUploadBytes = 32 << 20

type PedidoHandler struct {
	subSvc    *service.SubmissionService
	pedidoSvc *service.PedidoService
}

func NewPedidoHandler(subSvc *service.SubmissionService, pedidoSvc *service.PedidoService) *PedidoHandler {
	return &PedidoHandler{subSvc: subSvc, pedidoSvc: pedidoSvc}
}

// Create accepts a multipart form: every plain value becomes a form
// field, every file part an attachment.
func (h *PedidoHandler) Create(w http.ResponseWriter, r *http.Request) {
	serviceID := chi.URLParam(r, "serviceId")
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	fields := map[string]string{}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	var attachments []models.Attachment
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "could not read uploaded file "+fh.Filename)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "could not read uploaded file "+fh.Filename)
				return
			}
			attachments = append(attachments, models.Attachment{Name: fh.Filename, Data: data})
		}
	}

	rec, err := h.subSvc.Submit(r.Context(), models.SubmissionRequest{
		ServiceID:   serviceID,
		Principal:   principal,
		Fields:      fields,
		Attachments: attachments,
	})
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *PedidoHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	pedidos, err := h.pedidoSvc.ListFor(r.Context(), principal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pedidos": pedidos,
		"total":   len(pedidos),
	})
}

func (h *PedidoHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	location := chi.URLParam(r, "serviceId") + "/" + chi.URLParam(r, "folder")
	rec, err := h.pedidoSvc.Get(r.Context(), principal, location)
	if err != nil {
		if errors.Is(err, service.ErrPedidoNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeSubmissionError(w http.ResponseWriter, err error) {
	se, ok := service.AsSubmissionError(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusBadRequest
	switch se.Kind {
	case service.UnknownService:
		status = http.StatusNotFound
	case service.LocationConflict:
		status = http.StatusConflict
	case service.PersistenceFailure:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{
		"error": se.Error(),
		"kind":  string(se.Kind),
	})
}
