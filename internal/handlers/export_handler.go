package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bancoquestoes/internal/service"
)

// ExportHandler serves selected questions as downloadable files
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export renders the selected questions in the requested format and sends
// them as an attachment
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var payload struct {
		IDs    []int64 `json:"ids"`
		Format string  `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Dados inválidos", nil)
		return
	}
	if len(payload.IDs) == 0 || payload.Format == "" {
		respondJSONError(w, http.StatusBadRequest, "IDs ou formato não fornecidos", nil)
		return
	}

	doc, err := h.exportService.Export(payload.IDs, user.ID, payload.Format)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFormat):
			respondJSONError(w, http.StatusBadRequest, "Formato inválido", nil)
		case errors.Is(err, service.ErrNothingToExport):
			respondJSONError(w, http.StatusNotFound, "Nenhuma questão encontrada para exportar", nil)
		default:
			respondJSONError(w, http.StatusInternalServerError, "Erro no servidor", err)
		}
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=%s", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}
