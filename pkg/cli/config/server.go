package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr         string
	Passcode     string
	BaseURL      string
	AutoDispatch bool
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("WEEKLYDIGEST_ADDR"),
			Destination: &s.Addr,
		},
		&cli.StringFlag{
			Name:        "passcode",
			Usage:       "Shared passcode required on ingest and combine requests (disabled if empty)",
			Sources:     cli.EnvVars("WEEKLYDIGEST_PASSCODE"),
			Destination: &s.Passcode,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL used in report links (if not set, detected from request headers)",
			Sources:     cli.EnvVars("WEEKLYDIGEST_BASE_URL"),
			Destination: &s.BaseURL,
		},
		&cli.BoolFlag{
			Name:        "auto-dispatch",
			Usage:       "Combine the week in the background after each submission",
			Value:       true,
			Sources:     cli.EnvVars("WEEKLYDIGEST_AUTO_DISPATCH"),
			Destination: &s.AutoDispatch,
		},
	}
}

// LogValue returns structured log value
func (s Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr),
		slog.Bool("passcode", s.Passcode != ""),
		slog.String("base_url", s.BaseURL),
		slog.Bool("auto_dispatch", s.AutoDispatch),
	)
}
