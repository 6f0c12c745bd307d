package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rvg-calc/core/engine"
	"rvg-calc/core/schedule"
	apperrors "rvg-calc/internal/errors"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// CacheHeader reports whether a calculation was served from the result cache
const CacheHeader = "X-Cache"

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// handleCalculate handles POST /calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	normalized, resp, hit, err := s.calculate(&req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp.RequestID = RequestID(r.Context())
	if s.results != nil {
		w.Header().Set(CacheHeader, cacheStatus(hit))
	}

	s.logger.Debug("calculation served",
		zap.String("request_id", resp.RequestID),
		zap.String("input_hash", resp.InputHash),
		zap.Bool("cached", hit),
		zap.Int("positions", len(normalized.Positions)),
		zap.String("gross", resp.Result.GrossTotal.StringFixed(2)),
	)
	writeJSON(w, resp, http.StatusOK)
}

// handleFee handles POST /fee
func (s *Server) handleFee(w http.ResponseWriter, r *http.Request) {
	var req FeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	date, err := ParseDate(req.Date, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	rate := decimal.NewFromInt(1)
	if req.Rate != nil {
		rate = *req.Rate
	}

	quote, err := engine.Quote(req.Table, req.Amount, rate, date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, quote, http.StatusOK)
}

// handleSearchPositions handles GET /positions?q=
func (s *Server) handleSearchPositions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	positions := s.catalog.Search(query)
	writeJSON(w, PositionsResponse{Query: query, Count: len(positions), Positions: positions}, http.StatusOK)
}

// handleGetPosition handles GET /positions/{code}
func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	def, ok := s.catalog.Lookup(code)
	if !ok {
		s.writeError(w, apperrors.NotFound("position", code))
		return
	}
	writeJSON(w, def, http.StatusOK)
}

// handleSchedules handles GET /schedules
func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"schedules": ListSchedules(),
	}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "healthy",
		"version":   s.version,
		"positions": s.catalog.Len(),
		"catalog":   s.catalog.Stats(),
		"time":      s.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "rvg-calc",
		"api_version": "v1",
	}, http.StatusOK)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Parsing("invalid JSON body", err)
	}
	return nil
}

// ListSchedules describes every registered fee table version
func ListSchedules() []ScheduleInfo {
	var out []ScheduleInfo
	for _, v := range schedule.General().All() {
		out = append(out, scheduleInfo(engine.TableGeneral, v.ID, v.Name, v.Citation, v.Validity))
	}
	for _, v := range schedule.Court().All() {
		out = append(out, scheduleInfo(engine.TableCourt, v.ID, v.Name, v.Citation, v.Validity))
	}
	for _, v := range schedule.Reduced().All() {
		out = append(out, scheduleInfo(engine.TableReduced, v.ID, v.Name, v.Citation, v.Validity))
	}
	return out
}

func scheduleInfo(table engine.Table, id, name, citation string, validity schedule.Validity) ScheduleInfo {
	info := ScheduleInfo{
		Table:     table,
		ID:        id,
		Name:      name,
		Citation:  citation,
		ValidFrom: validity.From.Format(DateLayout),
	}
	if validity.Until != nil {
		info.ValidTo = validity.Until.Format(DateLayout)
	}
	return info
}
