/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirpx.dev/mbx"
	"dirpx.dev/mbx/agent"
	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
	"dirpx.dev/mbx/descriptor"
	"dirpx.dev/mbx/metrics"
	"dirpx.dev/mbx/properties"
	"dirpx.dev/mbx/registry"
	"dirpx.dev/mbx/server"
)

type serveOptions struct {
	addr       string
	properties string
	domain     string
	namespace  string
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the management API and metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			printError("logger", err)
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, serveOpts, log)
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveOpts.addr, "addr", ":9090", "listen address")
	f.StringVar(&serveOpts.properties, "properties", "", "YAML or TOML property file, reloaded on change")
	f.StringVar(&serveOpts.domain, "domain", config.DefaultDomain, "default object name domain")
	f.StringVar(&serveOpts.namespace, "namespace", "mbx", "Prometheus namespace")
	rootCmd.AddCommand(serveCmd)
}

// daemon is the assembled process state.
type daemon struct {
	handler http.Handler
	stats   *RuntimeStats
	name    server.ObjectName
	close   func() error
}

// assemble wires properties, registry, server, the runtime mbean, the
// management API and metrics into one handler.
func assemble(opts serveOptions, log *zap.Logger) (*daemon, error) {
	cfg := config.NewConfig(config.WithDomain(opts.domain))

	var props apis.PropertySource = properties.Env{Prefix: "MBXD"}
	closer := func() error { return nil }
	if opts.properties != "" {
		w, err := properties.Watch(opts.properties, log)
		if err != nil {
			return nil, fmt.Errorf("properties: %w", err)
		}
		props = properties.Chain(props, w)
		closer = w.Close
	}

	stats := &RuntimeStats{Verbose: verbose}
	stats.Refresh()

	reg := registry.New(cfg)
	reg.MustRegister(registry.Definition{
		Type:   reflect.TypeFor[RuntimeStats](),
		Normal: true,
		Create: func() (any, error) { return stats, nil },
	})
	srv := server.New(server.WithLogger(log))
	mbx.SetAll(&cfg, props, reg, srv, nil, log)

	name, _, err := mbx.ExposeType[RuntimeStats](
		descriptor.WithScope(apis.ScopeNormal),
		descriptor.WithName(cfg.Domain+":type=Runtime"),
		descriptor.WithDescription("{mbxd.runtime.description}"),
		descriptor.WithOperation("refresh", "Refresh", "samples the Go runtime"),
		descriptor.WithOperation("gc", "GC", "forces a garbage collection"),
	)
	if err != nil {
		_ = closer()
		return nil, err
	}

	collector := metrics.NewCollector(opts.namespace, srv)
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collector, collectors.NewGoCollector())

	r := chi.NewRouter()
	r.Use(collector.Instrument)
	r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	r.Mount("/api", agent.New(srv, agent.WithLogger(log)).Routes())

	return &daemon{handler: r, stats: stats, name: name, close: closer}, nil
}

func serve(ctx context.Context, opts serveOptions, log *zap.Logger) error {
	d, err := assemble(opts, log)
	if err != nil {
		printError("assemble", err)
		return err
	}
	defer func() { _ = d.close() }()

	hs := &http.Server{
		Addr:              opts.addr,
		Handler:           d.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("mbxd listening", zap.String("addr", opts.addr), zap.String("runtime", d.name.String()))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("mbxd shutting down")
	return hs.Shutdown(shutdownCtx)
}
