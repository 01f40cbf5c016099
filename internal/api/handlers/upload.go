// upload.go — обработчики POST /v1/upload/{id} и GET /v1/analysis/{id}.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/analysis-module/internal/api/errors"
)

// maxUploadBody — ограничение тела запроса регистрации.
const maxUploadBody = 1 << 20

type uploadRequest struct {
	Hash *string `json:"hash"`
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type analysisResponse struct {
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	ResultURL     string `json:"result_url"`
}

// UploadFile — POST /v1/upload/{id}. Регистрирует файл и возвращает URL для загрузки.
func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id, err := bindFileID(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBody)).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return
	}
	if req.Hash == nil {
		apierrors.ValidationError(w, "некорректное тело запроса: поле hash обязательно")
		return
	}

	uploadURL, err := h.analysis.Upload(r.Context(), id, *req.Hash)
	if err != nil {
		h.writeServiceError(w, "upload", err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{UploadURL: uploadURL})
}

// GetAnalysis — GET /v1/analysis/{id}. Хранилище не опрашивается.
func (h *APIHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := bindFileID(r)
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	st := h.analysis.Analysis(id)
	writeJSON(w, http.StatusOK, analysisResponse{
		Status:        st.Status,
		StatusMessage: st.StatusMessage,
		ResultURL:     st.ResultURL,
	})
}
