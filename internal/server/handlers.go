package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/matrix"
	"github.com/katalvlaran/makecases/synth"
)

type errorResponse struct {
	Error string `json:"error"`
}

// matrixRequest is the body of POST /v1/matrices.
type matrixRequest struct {
	synth.MatrixRequest
	Check bool `json:"check"`
}

type matrixResponse struct {
	NumVars   int         `json:"numvars"`
	Structure string      `json:"structure"`
	Target    string      `json:"target"`
	Rows      [][]float64 `json:"rows"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createDataset(w http.ResponseWriter, r *http.Request) {
	req := synth.DefaultRequest()
	req.Display = false
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/datasets/"+ds.Name)
	writeJSON(w, http.StatusCreated, ds.Summary())
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := s.pipeline.Registry().List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []dataset.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.pipeline.Registry().Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		err = dataset.WriteJSON(w, ds)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ds.Name+".csv"))
		err = dataset.WriteCSV(w, ds)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unsupported format %q", format)})
		return
	}
	if err != nil {
		s.logger.Warn("export failed", "dataset", ds.Name, "error", err)
	}
}

func (s *Server) deleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Registry().Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) buildMatrix(w http.ResponseWriter, r *http.Request) {
	var req matrixRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.pipeline.Matrix(r.Context(), req.MatrixRequest, req.Check)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tokens, err := matrix.FormatTokens(m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matrixResponse{
		NumVars:   m.Rows(),
		Structure: strings.ToUpper(string(req.Structure)),
		Target:    tokens,
		Rows:      m.ToRows(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", makecases.ErrInvalidParameters, err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, makecases.ErrInvalidParameters), errors.Is(err, makecases.ErrConflictingInput):
		return http.StatusBadRequest
	case errors.Is(err, dataset.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrNameConflict):
		return http.StatusConflict
	case errors.Is(err, makecases.ErrDelegateExecution):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
