package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/colorscale"
	"github.com/lox/climateviz/internal/dashboard"
	"github.com/lox/climateviz/internal/monitor"
	"github.com/lox/climateviz/internal/series"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleAPIRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.svc.Regions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, regions)
}

// decodeSelection reads a JSON selection. Fields absent from the body keep
// their dashboard defaults.
func decodeSelection(w http.ResponseWriter, r *http.Request) (dashboard.Selection, error) {
	sel := dashboard.DefaultSelection()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sel); err != nil {
		return sel, &dashboard.ValidationError{Field: "body", Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return sel, nil
}

func (s *Server) handleAPIVisualize(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sel.Mode = dashboard.ModeTimeSeries

	res, err := s.svc.TimeSeries(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPIMap(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Map(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type legendResponse struct {
	Variable series.Variable     `json:"variable"`
	Unit     string              `json:"unit"`
	Buckets  []colorscale.Bucket `json:"buckets"`
}

func (s *Server) handleAPILegend(w http.ResponseWriter, r *http.Request) {
	v := series.Variable(r.URL.Query().Get("variable"))
	if v == "" {
		v = series.Temperature
	}
	writeJSON(w, http.StatusOK, legendResponse{
		Variable: v,
		Unit:     colorscale.ForVariable(v).Unit,
		Buckets:  colorscale.Legend(v),
	})
}

func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	sel := dashboard.ParseSelection(r.URL.Query())
	sel.Mode = dashboard.ModeTimeSeries

	res, err := s.svc.TimeSeries(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := fmt.Sprintf("climate_%s_%s_%s.csv", res.Selection.Region, res.Selection.Start, res.Selection.End)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := series.WriteCSV(w, res.Records, res.Variables(), series.DefaultCSVOptions()); err != nil {
		s.logger.Error("write csv", zap.Error(err))
	}
}

type healthResponse struct {
	Status   string           `json:"status"`
	Upstream monitor.Snapshot `json:"upstream"`
	Errors   []string         `json:"errors,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.monitor.Last()
	if !ok || s.liveProbe {
		snap = s.monitor.Probe(r.Context())
	}

	health := healthResponse{Status: "ok", Upstream: snap}
	switch {
	case !snap.Up:
		health.Status = "error"
		if snap.Error != "" {
			health.Errors = append(health.Errors, snap.Error)
		}
	case !snap.Healthy():
		health.Status = "degraded"
		for _, f := range snap.MissingFiles {
			health.Errors = append(health.Errors, "missing data file: "+f)
		}
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
