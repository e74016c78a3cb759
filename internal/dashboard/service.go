package dashboard

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/climate"
	"github.com/lox/climateviz/internal/colorscale"
	"github.com/lox/climateviz/internal/metrics"
	"github.com/lox/climateviz/internal/models"
	"github.com/lox/climateviz/internal/series"
	"github.com/lox/climateviz/internal/stats"
)

// Upstream is the subset of the climate API the dashboard uses.
type Upstream interface {
	Regions(ctx context.Context) ([]models.Region, error)
	Visualize(ctx context.Context, req models.VisualizeRequest) (*models.VisualizeResponse, error)
	MapData(ctx context.Context, req models.MapDataRequest) (*models.MapDataResponse, error)
	Health(ctx context.Context) (*models.HealthCheckResponse, error)
}

// Result is a time series selection resolved against the API.
type Result struct {
	Selection Selection                         `json:"selection"`
	Records   []series.Record                   `json:"records"`
	Stats     map[series.Variable]stats.Summary `json:"stats"`
	Counts    map[series.Variable]int           `json:"counts"`
	Units     map[series.Variable]string        `json:"units"`
	// Unavailable maps selected variables the API could not serve to the
	// reason it gave.
	Unavailable map[series.Variable]string `json:"unavailable,omitempty"`
}

// Variables returns the selected variables that have data, in selection
// order.
func (r *Result) Variables() []series.Variable {
	var out []series.Variable
	for _, v := range r.Selection.Variables {
		if _, ok := r.Stats[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// MapResult is a map mode selection resolved against the API.
type MapResult struct {
	Selection Selection               `json:"selection"`
	Variable  series.Variable         `json:"variable"`
	Data      *models.MapDataResponse `json:"data"`
	// Bucket is nil when the API has no temporal mean.
	Bucket *colorscale.Bucket  `json:"bucket"`
	Legend []colorscale.Bucket `json:"legend"`
}

type Service struct {
	upstream  Upstream
	mergeOpts []series.Option
	logger    *zap.Logger
}

func NewService(upstream Upstream, logger *zap.Logger, mergeOpts ...series.Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		upstream:  upstream,
		mergeOpts: mergeOpts,
		logger:    logger.Named("dashboard"),
	}
}

func (s *Service) Regions(ctx context.Context) ([]models.Region, error) {
	regions, err := s.upstream.Regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Name < regions[j].Name })
	return regions, nil
}

func (s *Service) Health(ctx context.Context) (*models.HealthCheckResponse, error) {
	h, err := s.upstream.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("check upstream health: %w", err)
	}
	return h, nil
}

// TimeSeries validates sel, fetches its series and merges them.
func (s *Service) TimeSeries(ctx context.Context, sel Selection) (*Result, error) {
	sel.Normalize()
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.upstream.Visualize(ctx, sel.VisualizeRequest())
	if err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}

	res := &Result{
		Selection: sel,
		Stats:     make(map[series.Variable]stats.Summary),
		Counts:    make(map[series.Variable]int),
		Units:     make(map[series.Variable]string),
	}

	for v, err := range climate.UnavailableVariables(resp, sel.Variables) {
		if res.Unavailable == nil {
			res.Unavailable = make(map[series.Variable]string)
		}
		res.Unavailable[v] = err.Error()
		s.logger.Warn("variable unavailable", zap.String("variable", string(v)), zap.Error(err))
	}

	inputs := resp.Inputs()
	records, err := series.Merge(sel.Variables, inputs, s.mergeOpts...)
	if err != nil {
		metrics.MergeErrors.Inc()
		return nil, fmt.Errorf("merge series: %w", err)
	}
	res.Records = records
	metrics.RecordsMerged.WithLabelValues(sel.Region).Add(float64(len(records)))

	for _, v := range sel.Variables {
		in, ok := inputs[v]
		if !ok {
			continue
		}
		res.Stats[v] = stats.ForInput(in)
		res.Counts[v] = len(in.Values)
		res.Units[v] = in.Unit
	}

	s.logger.Debug("time series built",
		zap.String("region", sel.Region),
		zap.Int("records", len(records)),
		zap.Int("variables", len(res.Stats)),
	)
	return res, nil
}

// Map validates sel in map mode and fetches the temporal mean of its first
// variable.
func (s *Service) Map(ctx context.Context, sel Selection) (*MapResult, error) {
	sel.Mode = ModeMap
	sel.Normalize()
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	v := sel.Variables[0]
	data, err := s.upstream.MapData(ctx, sel.MapRequest())
	if err != nil {
		return nil, fmt.Errorf("fetch map data: %w", err)
	}

	res := &MapResult{
		Selection: sel,
		Variable:  v,
		Data:      data,
		Legend:    colorscale.Legend(v),
	}
	if data.TemporalMean != nil {
		b := colorscale.Classify(v, *data.TemporalMean)
		res.Bucket = &b
	}
	return res, nil
}
