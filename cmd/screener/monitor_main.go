package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jarair9/Crypto-screener/internal/config"
	httpiface "github.com/jarair9/Crypto-screener/internal/interfaces/http"
	"github.com/jarair9/Crypto-screener/internal/telemetry/metrics"
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve /health and /metrics for observability",
		RunE:  runMonitor,
	}
	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	cmd.Flags().String("config", "", "Path to YAML config")
	return cmd
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	addr := cfg.Monitor.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	registry := prometheus.NewRegistry()
	metrics.NewRegistry(registry)

	return httpiface.NewServer(addr, registry).ListenAndServe()
}
