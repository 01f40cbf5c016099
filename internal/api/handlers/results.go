// results.go — обработчики выборок из хранилища:
// GET /v1/results/{id}, GET /v1/files/{id}, GET /v1/path.
package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/bigkaa/goartstore/analysis-module/internal/api/errors"
)

type resultsResponse struct {
	Status         string   `json:"status"`
	StatusMessage  string   `json:"status_message"`
	RelatedFileIDs []string `json:"related_file_ids"`
}

type fileInfo struct {
	FileID     string    `json:"file_id"`
	UploadDate time.Time `json:"upload_date"`
	Hash       string    `json:"hash"`
}

type filesResponse struct {
	Files []fileInfo `json:"files"`
}

type pathResponse struct {
	Path []string `json:"path"`
}

// GetResults — GET /v1/results/{id}. id и page не влияют на выдачу.
func (h *APIHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	if _, err := bindFileID(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	perPage, err := paginationParams(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	res, err := h.analysis.Results(r.Context(), perPage)
	if err != nil {
		h.writeServiceError(w, "results", err)
		return
	}

	ids := res.RelatedFileIDs
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{
		Status:         res.Status,
		StatusMessage:  res.StatusMessage,
		RelatedFileIDs: ids,
	})
}

// ListFiles — GET /v1/files/{id}. after_date обязателен, но выборку не фильтрует.
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if _, err := bindFileID(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	if _, err := bindAfterDate(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	perPage, err := paginationParams(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	records, err := h.analysis.Files(r.Context(), perPage)
	if err != nil {
		h.writeServiceError(w, "files", err)
		return
	}

	files := make([]fileInfo, 0, len(records))
	for _, rec := range records {
		files = append(files, fileInfo{
			FileID:     rec.ID,
			UploadDate: rec.CreatedAt.UTC(),
			Hash:       rec.Hash,
		})
	}
	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

// GetPath — GET /v1/path. Возвращает те из src и dst, что есть в хранилище.
func (h *APIHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	src, err := bindQueryUUID(r, "src")
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	dst, err := bindQueryUUID(r, "dst")
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	if _, err := paginationParams(r); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	path, err := h.analysis.Path(r.Context(), src, dst)
	if err != nil {
		h.writeServiceError(w, "path", err)
		return
	}
	if path == nil {
		path = []string{}
	}
	writeJSON(w, http.StatusOK, pathResponse{Path: path})
}
