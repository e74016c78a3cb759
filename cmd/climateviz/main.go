package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/api"
	"github.com/lox/climateviz/internal/chart"
	"github.com/lox/climateviz/internal/config"
	"github.com/lox/climateviz/internal/dashboard"
	"github.com/lox/climateviz/internal/logging"
	"github.com/lox/climateviz/internal/monitor"
	"github.com/lox/climateviz/internal/series"
)

type CLI struct {
	config.Config `embed:""`

	Serve  ServeCmd  `cmd:"" default:"1" help:"Serve the dashboard and JSON API."`
	Render RenderCmd `cmd:"" help:"Render a chart page for a selection."`
	Export ExportCmd `cmd:"" help:"Export merged series for a selection as CSV."`
}

// Context is passed to every command's Run.
type Context struct {
	context.Context
	Config *config.Config
	Logger *zap.Logger
}

type ServeCmd struct {
	Listen        string        `env:"CLIMATEVIZ_LISTEN" default:":8080" help:"Address to listen on."`
	ProbeInterval time.Duration `env:"CLIMATEVIZ_PROBE_INTERVAL" default:"1m" help:"Climate API health probe interval, 0 to disable."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	client := ctx.Config.ClimateClient(ctx.Logger)
	svc := dashboard.NewService(client, ctx.Logger, ctx.Config.MergeOptions()...)

	var mon *monitor.Monitor
	if c.ProbeInterval > 0 {
		mon = monitor.New(client, c.ProbeInterval, ctx.Logger)
		if err := mon.Start(); err != nil {
			return fmt.Errorf("start monitor: %w", err)
		}
		defer mon.Stop()
	} else {
		ctx.Logger.Info("health probe disabled")
	}

	ctx.Logger.Info("starting server",
		zap.String("listen", c.Listen),
		zap.String("api_url", client.BaseURL()),
	)
	server := api.NewServer(svc, mon, c.Listen, series.ParseLocale(ctx.Config.Locale), ctx.Logger)
	return server.Run(ctx)
}

// SelectionFlags picks the data for render and export.
type SelectionFlags struct {
	Variable    []string `short:"v" default:"temperature" help:"Variable to include (repeatable)."`
	Aggregation string   `default:"daily" enum:"daily,monthly" help:"Daily or monthly values."`
	Region      string   `required:"" help:"Region identifier."`
	Start       string   `default:"2023-01-01" help:"First date (YYYY-MM-DD)."`
	End         string   `default:"2023-12-31" help:"Last date (YYYY-MM-DD)."`
	Out         string   `short:"o" default:"-" help:"Output file, - for stdout."`
}

func (f *SelectionFlags) selection() dashboard.Selection {
	sel := dashboard.Selection{
		Aggregation: f.Aggregation,
		Region:      f.Region,
		Start:       f.Start,
		End:         f.End,
		Mode:        dashboard.ModeTimeSeries,
	}
	for _, v := range f.Variable {
		sel.Variables = append(sel.Variables, series.Variable(v))
	}
	return sel
}

func (f *SelectionFlags) fetch(ctx *Context) (*dashboard.Result, error) {
	svc := dashboard.NewService(ctx.Config.ClimateClient(ctx.Logger), ctx.Logger, ctx.Config.MergeOptions()...)
	return svc.TimeSeries(ctx, f.selection())
}

func (f *SelectionFlags) output(write func(io.Writer) error) error {
	if f.Out == "-" {
		return write(os.Stdout)
	}
	file, err := os.Create(f.Out)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.Out, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

type RenderCmd struct {
	SelectionFlags `embed:""`
}

func (c *RenderCmd) Run(ctx *Context) error {
	res, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	subtitle := res.Selection.RangeLabel(series.ParseLocale(ctx.Config.Locale))
	return c.output(func(w io.Writer) error {
		return chart.Render(w, "Analyse des données climatiques", subtitle, res.Records, res.Selection.Variables, res.Units)
	})
}

type ExportCmd struct {
	SelectionFlags `embed:""`
	Delimiter      string `default:"," help:"Field delimiter."`
	Precision      int    `default:"-1" help:"Decimal places, -1 for shortest."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	res, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	opts := series.DefaultCSVOptions()
	if r := []rune(c.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	opts.Precision = c.Precision
	return c.output(func(w io.Writer) error {
		return series.WriteCSV(w, res.Records, res.Variables(), opts)
	})
}

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "climateviz: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("climateviz"),
		kong.Description("Climate data dashboard over the regional climate API."),
		kong.UsageOnError(),
	)

	logger, err := logging.New(cli.LogLevel, cli.LogDev)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = kctx.Run(&Context{Context: ctx, Config: &cli.Config, Logger: logger})
	kctx.FatalIfErrorf(err)
}
