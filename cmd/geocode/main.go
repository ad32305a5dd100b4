// Command geocode performs a single forward or reverse lookup from the
// command line, for trying out provider configuration before deploying the
// worker.
//
// Usage:
//
//	geocode -config geocode.yaml "435 north michigan ave, chicago il"
//	geocode -config geocode.yaml -reverse "40.7538,-73.9849"
//
// The config file is YAML:
//
//	provider: googlev3
//	api_key: ...
//	language: en
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/geoclient"

	_ "github.com/couchcryptid/geoclient/provider/geocodeearth"
	_ "github.com/couchcryptid/geoclient/provider/googlev3"
	_ "github.com/couchcryptid/geoclient/provider/pelias"
	_ "github.com/couchcryptid/geoclient/provider/yandex"
)

type fileConfig struct {
	Provider  string `yaml:"provider"`
	APIKey    string `yaml:"api_key"`
	ClientID  string `yaml:"client_id"`
	SecretKey string `yaml:"secret_key"`
	Language  string `yaml:"language"`
	Domain    string `yaml:"domain"`
}

func main() {
	configPath := flag.String("config", "geocode.yaml", "path to the YAML provider config")
	reverse := flag.Bool("reverse", false, "treat the query as a \"lat,lon\" coordinate")
	all := flag.Bool("all", false, "print every match instead of the best one")
	timeout := flag.Duration("timeout", 10*time.Second, "overall lookup timeout")
	verbose := flag.Bool("v", false, "log provider requests")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <query>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	query := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	geocoder, err := geoclient.New(cfg.Provider, geoclient.Settings{
		APIKey:   cfg.APIKey,
		ClientID: cfg.ClientID,
		Secret:   cfg.SecretKey,
		Domain:   cfg.Domain,
		Language: cfg.Language,
		Config:   geoclient.Config{Logger: logger},
	})
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	opts := &geoclient.Options{ExactlyOne: !*all, Language: cfg.Language}

	var locs []geoclient.Location
	if *reverse {
		locs, err = geocoder.Reverse(ctx, query, opts)
	} else {
		locs, err = geocoder.Geocode(ctx, query, opts)
	}
	if err != nil {
		fatal(err)
	}

	if len(locs) == 0 {
		fmt.Println("no results")
		return
	}
	for _, loc := range locs {
		fmt.Printf("%s\t%s\n", loc.Point, loc.Label)
	}
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("config %s: provider is required (one of %s)",
			path, strings.Join(geoclient.Providers(), ", "))
	}
	return &cfg, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "geocode:", err)
	os.Exit(1)
}
