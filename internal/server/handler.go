package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/dyike/StockPilot/consts"
	"github.com/dyike/StockPilot/internal/agents"
)

const maxBodyBytes = 64 << 10

type handler struct {
	backend Backend
}

type analyzeRequest struct {
	Query string `json:"query" form:"query"`
	Model string `json:"model" form:"model"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listModels(w http.ResponseWriter, _ *http.Request) {
	cfg := h.backend.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": cfg.LLMProvider,
		"default":  cfg.DefaultModel,
		"models":   consts.ModelPresets(cfg.LLMProvider),
	})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	cfg := h.backend.Config()

	credential := credentialFrom(r)
	if err := agents.ValidateCredential(cfg.LLMProvider, credential); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	req, err := decodeAnalyzeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	modelID := strings.TrimSpace(req.Model)
	if modelID == "" {
		modelID = cfg.DefaultModel
	}
	if !consts.IsModelPreset(cfg.LLMProvider, modelID) {
		writeError(w, http.StatusBadRequest, "unknown model: "+modelID)
		return
	}

	result := h.backend.Analyze(r.Context(), req.Query, modelID, credential)
	if result.RequestID != "" {
		w.Header().Set("X-Request-ID", result.RequestID)
	}
	writeJSON(w, http.StatusOK, result)
}

func credentialFrom(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, error) {
	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return req, errors.New("invalid form body")
		}
		req.Query = r.PostFormValue("query")
		req.Model = r.PostFormValue("model")
		return req, nil
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return req, errors.New("request body too large")
		}
		if len(body) == 0 {
			return req, errors.New("request body is required")
		}
		if err := sonic.Unmarshal(body, &req); err != nil {
			return req, errors.New("invalid JSON body")
		}
		return req, nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
