package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/nutrilabel/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var pf pipelineFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP label API",
		Long: `Start an HTTP server exposing the label pipeline.

Endpoints:
  GET  /health            health, engine and system stats
  POST /nutrition/image   multipart upload in field "image"
  POST /nutrition/base64  JSON {"image": "<data URL or base64>"}
  POST /nutrition/text    JSON {"text": "...", "enhance": true}
  GET  /ws/nutrition      WebSocket with per-stage progress
  GET  /metrics           Prometheus metrics

Examples:
  nutrilabel serve
  nutrilabel serve --host 0.0.0.0 --port 3000 --rate-limit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Server
			f := cmd.Flags()
			scfg := server.Config{
				Host:              stringFlag(cmd, "host", sc.Host),
				Port:              sc.Port,
				CORSOrigin:        stringFlag(cmd, "cors-origin", sc.CORSOrigin),
				MaxUploadMB:       int64(sc.MaxUploadMB),
				TimeoutSec:        sc.TimeoutSec,
				ShutdownTimeout:   sc.ShutdownTimeout,
				OverlayEnabled:    sc.OverlayEnabled,
				OverlayBoxColor:   a.cfg.Output.OverlayBoxColor,
				RateLimitEnabled:  sc.RateLimit.Enabled,
				RequestsPerMinute: sc.RateLimit.RequestsPerMinute,
				RequestsPerDay:    sc.RateLimit.RequestsPerDay,
			}
			if f.Changed("port") {
				scfg.Port, _ = f.GetInt("port")
			}
			if f.Changed("max-upload-size") {
				mb, _ := f.GetInt("max-upload-size")
				scfg.MaxUploadMB = int64(mb)
			}
			if f.Changed("timeout") {
				scfg.TimeoutSec, _ = f.GetInt("timeout")
			}
			if f.Changed("shutdown-timeout") {
				scfg.ShutdownTimeout, _ = f.GetInt("shutdown-timeout")
			}
			if f.Changed("overlay-enable") {
				scfg.OverlayEnabled, _ = f.GetBool("overlay-enable")
			}
			if f.Changed("rate-limit") {
				scfg.RateLimitEnabled, _ = f.GetBool("rate-limit")
			}
			if f.Changed("requests-per-minute") {
				scfg.RequestsPerMinute, _ = f.GetInt("requests-per-minute")
			}
			if f.Changed("requests-per-day") {
				scfg.RequestsPerDay, _ = f.GetInt("requests-per-day")
			}

			pl, err := a.buildPipeline(cmd, &pf)
			if err != nil {
				return err
			}
			srv, err := server.NewServer(scfg, pl)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, scfg)
		},
	}
	pf.register(cmd)
	f := cmd.Flags()
	f.StringP("host", "H", "localhost", "server host")
	f.IntP("port", "p", 8080, "server port")
	f.String("cors-origin", "*", "CORS allowed origins")
	f.Int("max-upload-size", 16, "maximum upload size in MB")
	f.Int("timeout", 60, "per-request processing timeout in seconds")
	f.Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	f.Bool("overlay-enable", true, "allow format=overlay on /nutrition/image")
	f.Bool("rate-limit", false, "enable per-IP rate limiting")
	f.Int("requests-per-minute", 30, "requests per minute per IP")
	f.Int("requests-per-day", 1000, "requests per day per IP")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
