package api

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/chart"
	"github.com/lox/climateviz/internal/dashboard"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := dashboard.ParseSelection(q)
	data := IndexData{
		Selection: sel,
		Submitted: len(q) > 0,
	}

	regions, err := s.svc.Regions(r.Context())
	if err != nil {
		_, msg := statusFor(err)
		data.RegionsError = msg
		s.logger.Warn("list regions", zap.Error(err))
	}
	data.Regions = regions

	status := http.StatusOK
	if data.Submitted {
		if err := s.fillResults(r, &data); err != nil {
			status, data.Error = statusFor(err)
		}
	}
	data.Options = variableOptions(data.Selection)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.Error("render dashboard", zap.Error(err))
	}
}

func (s *Server) fillResults(r *http.Request, data *IndexData) error {
	sel := data.Selection
	query := "?" + sel.Query().Encode()

	if sel.Mode == dashboard.ModeMap {
		res, err := s.svc.Map(r.Context(), sel)
		if err != nil {
			return err
		}
		data.Selection = res.Selection
		data.Map = res
		data.MapURL = "/map.png" + query
		data.Legend = res.Legend
		return nil
	}

	res, err := s.svc.TimeSeries(r.Context(), sel)
	if err != nil {
		return err
	}
	data.Selection = res.Selection
	data.Series = res
	data.Cards = statCards(res)
	data.Captions = chart.Caption(res.Stats, res.Selection.Variables)
	data.RangeText = res.Selection.RangeLabel(s.locale)
	data.ChartURL = "/chart" + query
	data.ExportURL = "/api/export.csv" + query
	for _, msg := range res.Unavailable {
		data.Missing = append(data.Missing, msg)
	}
	sort.Strings(data.Missing)
	return nil
}
