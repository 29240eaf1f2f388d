package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/WangWilly/xChain/pkgs/commonpkg/model"
	"github.com/WangWilly/xChain/pkgs/commonpkg/services"
	"github.com/WangWilly/xChain/pkgs/serverpkg/serverdto"
	log "github.com/sirupsen/logrus"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.eventService.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, serverdto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, serverdto.HealthResponse{
		Status:      "ok",
		TotalEvents: stats.TotalEvents,
		ByChain:     stats.ByChain,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req serverdto.IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := s.eventService.Ingest(r.Context(), services.IngestRequest{
		TxHash:      req.TxHash,
		Payload:     req.Payload,
		Chain:       req.Chain,
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Value:       req.Value,
		BlockNumber: req.BlockNumber,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.metrics.ingested.WithLabelValues(event.Chain).Inc()
	writeJSON(w, http.StatusOK, serverdto.NewEvent(event))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req serverdto.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var (
		hits []model.SearchHit
		err  error
	)
	if len(req.Vector) > 0 {
		hits, err = s.eventService.SearchByVector(r.Context(), req.Vector, model.SearchOptions{
			TopK:   req.TopK,
			Chain:  req.Chain,
			Probes: req.Probes,
		})
	} else {
		hits, err = s.eventService.Search(r.Context(), services.SearchRequest{
			Query:  req.Query,
			TopK:   req.TopK,
			Chain:  req.Chain,
			Probes: req.Probes,
		})
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, serverdto.NewSearchResponse(hits))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: limit must be an integer", errs.ErrInvalidArgument))
			return
		}
		limit = parsed
	}

	insights, err := s.eventService.Insights(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insights)
}

////////////////////////////////////////////////////////////////////////////////

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errs.ErrInvalidArgument, err)
	}
	return nil
}

// writeJSON encodes before writing the status, so an unencodable body becomes
// a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		log.WithError(err).Error("failed to encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(serverdto.ErrorResponse{Error: "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, serverdto.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument),
		errors.Is(err, errs.ErrEmbeddingDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, errs.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
