package main

import (
	"flag"
	"io"
)

type config struct {
	Out       string
	SitePath  string
	PublicDir string
}

func loadConfig(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Out, "out", "dist", "output directory")
	fs.StringVar(&cfg.SitePath, "site", "", "site.yaml override")
	fs.StringVar(&cfg.PublicDir, "public", "", "assets directory copied into the output")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}
