package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/textvault/textvault/internal/core/domain"
	"github.com/textvault/textvault/internal/logger"
)

// Request and response shapes. Field names follow the wire contract;
// the handlers translate to and from domain types and nothing else.

type ingestRequest struct {
	Text        string         `json:"text"`
	ReferenceID string         `json:"reference_id"`
	Meta        map[string]any `json:"meta,omitempty"`
	Language    string         `json:"language,omitempty"`
	BatchSize   int            `json:"batch_size,omitempty"`
	ChunkSize   int            `json:"chunk_size,omitempty"`
}

type ingestedChunkResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

type searchRequest struct {
	Query    string   `json:"query"`
	Language string   `json:"language,omitempty"`
	Cutoff   *float64 `json:"cutoff,omitempty"`
	TopK     *int     `json:"top_k,omitempty"`
}

type searchResultResponse struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	ReferenceID string  `json:"reference_id"`
	Score       float64 `json:"score"`
}

type encodeRequest struct {
	Text      string `json:"text"`
	BatchSize int    `json:"batch_size,omitempty"`
	ChunkSize int    `json:"chunk_size,omitempty"`
}

type encodedChunkResponse struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

type encodeQueryRequest struct {
	Text string `json:"text"`
}

type encodeQueryResponse struct {
	Embedding []float32 `json:"embedding"`
}

type bulkEncodeRequest struct {
	Items     []bulkItem `json:"items"`
	BatchSize int        `json:"batch_size,omitempty"`
	ChunkSize int        `json:"chunk_size,omitempty"`
}

type bulkItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type bulkEncodedChunkResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

type recordResponse struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	ReferenceID string         `json:"reference_id"`
	Language    string         `json:"language,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !decode(w, r, &req) {
		return
	}

	results, err := s.pipeline.Ingest(r.Context(), domain.IngestRequest{
		Text:        req.Text,
		ReferenceID: req.ReferenceID,
		Meta:        req.Meta,
		Language:    req.Language,
		BatchSize:   req.BatchSize,
		ChunkSize:   req.ChunkSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]ingestedChunkResponse, len(results))
	for i, res := range results {
		out[i] = ingestedChunkResponse{ID: res.ID, Text: res.Text, Embedding: res.Embedding}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}

	cutoff, topK := s.searchDefaults()
	if req.Cutoff != nil {
		cutoff = *req.Cutoff
	}
	if req.TopK != nil {
		topK = *req.TopK
	}

	results, err := s.pipeline.Search(r.Context(), domain.SearchRequest{
		Query:    req.Query,
		Language: req.Language,
		Cutoff:   cutoff,
		TopK:     topK,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]searchResultResponse, len(results))
	for i, res := range results {
		out[i] = searchResultResponse{
			ID:          res.ID,
			Text:        res.Text,
			ReferenceID: res.ReferenceID,
			Score:       res.Score,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteByReference(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.DeleteByReference(r.Context(), r.PathValue("reference_id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListByReference(w http.ResponseWriter, r *http.Request) {
	records, err := s.pipeline.ListByReference(r.Context(), r.PathValue("reference_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recordResponse, len(records))
	for i, rec := range records {
		out[i] = recordResponse{
			ID:          rec.ID,
			Text:        rec.Text,
			ReferenceID: rec.ReferenceID,
			Language:    rec.Language,
			Meta:        rec.Meta,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if !decode(w, r, &req) {
		return
	}

	results, err := s.pipeline.Encode(r.Context(), domain.EncodeRequest{
		Text:      req.Text,
		BatchSize: req.BatchSize,
		ChunkSize: req.ChunkSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]encodedChunkResponse, len(results))
	for i, res := range results {
		out[i] = encodedChunkResponse{Text: res.Text, Embedding: res.Embedding}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEncodeQuery(w http.ResponseWriter, r *http.Request) {
	var req encodeQueryRequest
	if !decode(w, r, &req) {
		return
	}

	embedding, err := s.pipeline.EncodeQuery(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeQueryResponse{Embedding: embedding})
}

func (s *Server) handleEncodeBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkEncodeRequest
	if !decode(w, r, &req) {
		return
	}

	items := make([]domain.BulkItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.BulkItem{ID: item.ID, Text: item.Text}
	}

	results, err := s.pipeline.EncodeBulk(r.Context(), items, req.BatchSize, req.ChunkSize)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]bulkEncodedChunkResponse, len(results))
	for i, res := range results {
		out[i] = bulkEncodedChunkResponse{ID: res.ID, Text: res.Text, Embedding: res.Embedding}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.embedder != nil {
		if err := s.embedder.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: fmt.Sprintf("embedding service: %v", err)})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode parses the JSON body into dst; on failure it writes a 400 and
// returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

// writeError maps pipeline errors to status codes. Invalid input and
// dimension mismatches are the caller's fault; unavailable capabilities
// are 503; everything else is a plain server error.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrDimensionMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.Warn("Request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Encoding response: %v", err)
	}
}
