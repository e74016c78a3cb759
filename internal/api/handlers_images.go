package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/chart"
	"github.com/lox/climateviz/internal/dashboard"
	"github.com/lox/climateviz/internal/mapcard"
)

const chartTitle = "Analyse des données climatiques"

// handleChart serves the go-echarts page embedded by the dashboard.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel := dashboard.ParseSelection(r.URL.Query())
	sel.Mode = dashboard.ModeTimeSeries

	res, err := s.svc.TimeSeries(r.Context(), sel)
	if err != nil {
		status, msg := statusFor(err)
		http.Error(w, msg, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = chart.Render(w, chartTitle, res.Selection.RangeLabel(s.locale), res.Records, res.Selection.Variables, res.Units)
	if err != nil {
		s.logger.Error("render chart", zap.Error(err))
	}
}

func (s *Server) handleMapCard(w http.ResponseWriter, r *http.Request) {
	sel := dashboard.ParseSelection(r.URL.Query())

	res, err := s.svc.Map(r.Context(), sel)
	if err != nil {
		status, msg := statusFor(err)
		http.Error(w, msg, status)
		return
	}

	data, err := mapcard.Render(mapcard.FromResponse(res.Data, res.Variable))
	if err != nil {
		s.logger.Error("render map card", zap.Error(err))
		http.Error(w, "map card unavailable", http.StatusInternalServerError)
		return
	}
	s.servePNG(w, data)
}

func (s *Server) servePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}
