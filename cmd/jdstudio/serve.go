package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/config"
	"github.com/jonathan/jdstudio/internal/export"
	"github.com/jonathan/jdstudio/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local recruiter server",
	Long:  `Start an HTTP server that serves the recruiter page and streams generated job descriptions from the backend.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv, err := newServer(cmd)
	if err != nil {
		return err
	}
	return srv.Start()
}

// newServer wires the server from config, environment and flags.
func newServer(cmd *cobra.Command) (*server.Server, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	client, err := backend.NewClient(cfg.BackendURL, backend.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	exporter := export.NewPDFExporter(cfg.ChromePath, cfg.Timeout())
	exporter.Verbose = cfg.Verbose

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		RevealInterval: cfg.Interval(),
		Backend:        client,
		Exporter:       exporter,
		JWT:            jwtConfig,
		Verbose:        cfg.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}
