package watch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketinsight/internal/cli/config"
	"github.com/rustyeddy/marketinsight/internal/cli/data"
	"github.com/rustyeddy/marketinsight/internal/metrics"
	watcher "github.com/rustyeddy/marketinsight/internal/watch"
	"github.com/rustyeddy/marketinsight/session"
)

func New(rc *config.RootConfig) *cobra.Command {
	var (
		schedule    string
		report      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch [symbol]",
		Short: "Refresh market data on a schedule",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			if len(args) == 1 {
				symbol = args[0]
			}

			wc := rc.Config.Watch
			if cmd.Flags().Changed("schedule") {
				wc.Schedule = schedule
			}
			if cmd.Flags().Changed("report") {
				wc.GenerateReport = report
			}
			if cmd.Flags().Changed("metrics-addr") {
				wc.MetricsAddr = metricsAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			rec := metrics.New(reg)

			sess := rc.NewSession(rc.NewClient(rec), symbol, session.WithMetrics(rec))

			results := make(chan session.State, 1)
			w, err := watcher.New(ctx, sess, wc.Schedule,
				watcher.WithReport(wc.GenerateReport),
				watcher.WithLogger(rc.Log.With().Str("component", "watch").Logger()),
				watcher.WithResults(results),
			)
			if err != nil {
				return err
			}

			if wc.MetricsAddr != "" {
				srv := serveMetrics(wc.MetricsAddr, reg, rc.Log)
				defer shutdown(srv)
				rc.Log.Info().Str("addr", wc.MetricsAddr).Msg("metrics listening")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (%s)\n", sess.Snapshot().Symbol, wc.Schedule)

			w.Start()
			defer w.Stop()
			go w.RunNow()

			for {
				select {
				case <-ctx.Done():
					return nil
				case st := <-results:
					fmt.Fprintf(out, "[%s] ", time.Now().Format(time.TimeOnly))
					data.PrintState(out, st)
				}
			}
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (default from config: @every 5m)")
	cmd.Flags().BoolVar(&report, "report", false, "Generate a report after each fetch")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on host:port")
	return cmd
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
