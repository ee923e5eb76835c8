package main

import (
	"flag"
	"io"
	"strings"
)

const defaultTemplatesDir = "internal/layout/templates"

type config struct {
	Addr         string
	Dev          bool
	TemplatesDir string
	PublicDir    string
	SitePath     string
	// Analytics overrides the site setting when non-nil.
	Analytics *bool
	CacheCost int64
}

// loadConfig resolves flags and environment. The port prefers
// WINLAME_WEB_PORT, then PORT, else 8080.
func loadConfig(args []string, getenv func(string) string) (config, error) {
	port := getenv("WINLAME_WEB_PORT")
	if port == "" {
		port = getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	var cfg config
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", ":"+port, "HTTP listen address")
	fs.StringVar(&cfg.TemplatesDir, "templates", defaultTemplatesDir, "layout templates directory (dev mode)")
	fs.StringVar(&cfg.PublicDir, "public", "public", "public assets directory")
	fs.StringVar(&cfg.SitePath, "site", "", "site.yaml override")
	fs.Int64Var(&cfg.CacheCost, "cache-bytes", 0, "page cache size in bytes (0 selects the default)")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg.Dev = getenv("WINLAME_WEB_DEV") != "" || getenv("DEV") != ""
	switch strings.ToLower(strings.TrimSpace(getenv("WINLAME_WEB_ANALYTICS"))) {
	case "":
	case "0", "off", "false", "no":
		off := false
		cfg.Analytics = &off
	default:
		on := true
		cfg.Analytics = &on
	}
	return cfg, nil
}
