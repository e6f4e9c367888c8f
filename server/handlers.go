package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nutrilog/foodvision/core"
	"github.com/nutrilog/foodvision/server/store"
)

const (
	maxUploadBytes = 32 << 20
	requestTimeout = 120 * time.Second
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	image, contentType, err := readImage(r)
	if err != nil {
		s.recordDetection(ctx, "error", 0, "", contentType, start)
		writeError(w, err)
		return
	}

	result, err := s.pipeline.Detect(ctx, image, contentType)
	if err != nil {
		s.recordDetection(ctx, "error", 0, "", contentType, start)
		writeError(w, err)
		return
	}

	if result.Status == "existing" {
		s.recordDetection(ctx, result.Status, result.Existing.Score, result.Existing.ID, contentType, start)
		writeJSON(w, ExistingFoodResponse{
			Status:          result.Status,
			Message:         result.Message,
			SimilarityScore: result.Existing.Score,
			ExistingData: ExistingData{
				ID:      result.Existing.ID,
				Score:   result.Existing.Score,
				Payload: result.Existing.Payload,
			},
		})
		return
	}

	similar := make([]SimilarFood, 0, len(result.Similar))
	for _, m := range result.Similar {
		similar = append(similar, SimilarFood{
			ID:              m.ID,
			SimilarityScore: m.Score,
			Payload:         m.Payload,
		})
	}

	s.recordDetection(ctx, result.Status, 0, result.PointID, contentType, start)
	writeJSON(w, NewFoodResponse{
		Status:  result.Status,
		Message: result.Message,
		VertexAI: VertexAIResult{
			Classification:     safeJSON(result.Classification),
			EmbeddingGenerated: true,
		},
		SimilarFoods: similar,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.vectors.DeleteCollection(ctx); err != nil {
		writeError(w, err)
		return
	}

	// Give the store a moment to settle before recreating.
	time.Sleep(time.Second)

	if err := s.vectors.CreateCollection(ctx); err != nil {
		writeError(w, err)
		return
	}

	log.Printf("[vector] Collection %q reset", s.collection)
	writeJSON(w, ResetResponse{
		Message:    "Collection reset successfully",
		Collection: s.collection,
	})
}

func (s *Server) handleDetectionList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	detections, err := s.detections.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if detections == nil {
		detections = []store.DetectionInfo{}
	}
	writeJSON(w, DetectionListResponse{Detections: detections})
}

func (s *Server) handleDetectionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.detections.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.metrics.Snapshot())
}

// readImage pulls the single uploaded file out of a multipart form request.
// It runs before any provider or store call so malformed requests never cost
// an upstream round trip.
func readImage(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", core.NewValidationError("request must be multipart/form-data")
	}

	var file io.ReadCloser
	var contentType string
	for _, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, "", core.NewValidationError("unreadable file upload: %v", err)
		}
		file = f
		contentType = headers[0].Header.Get("Content-Type")
		break
	}
	if file == nil {
		return nil, "", core.NewValidationError("no file uploaded")
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return nil, "", core.NewValidationError("unreadable file upload: %v", err)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return image, contentType, nil
}

func (s *Server) recordDetection(ctx context.Context, status string, score float64, pointID, contentType string, start time.Time) {
	err := s.detections.Add(ctx, store.DetectionInfo{
		ID:              uuid.NewString(),
		Status:          status,
		SimilarityScore: score,
		PointID:         pointID,
		ContentType:     contentType,
		ElapsedMs:       time.Since(start).Milliseconds(),
		Timestamp:       start.UnixMilli(),
	})
	if err != nil {
		log.Printf("[store] Failed to record detection: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses: client mistakes are
// 400, upstream provider/store failures are 502, anything else 500. The body
// stays plain text.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *core.ValidationError
	var providerErr *core.ProviderError
	var storeErr *core.StoreError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &providerErr), errors.As(err, &storeErr):
		status = http.StatusBadGateway
	}

	log.Printf("[server] Request failed (%d): %v", status, err)
	http.Error(w, "Error: "+err.Error(), status)
}

// safeJSON guards against a provider handing back a 200 with a non-JSON body;
// such a classification is wrapped as a JSON string instead of corrupting the
// response document.
func safeJSON(raw json.RawMessage) json.RawMessage {
	if json.Valid(raw) {
		return raw
	}
	wrapped, _ := json.Marshal(string(raw))
	return wrapped
}
