package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/jdevelop/sgplaces/config"
	"github.com/jdevelop/sgplaces/logger"
	"github.com/jdevelop/sgplaces/placesapi"
)

const DatePattern = "2006-01-02"

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigDir string        `short:"c" long:"config-dir" env:"SGPLACES_CONFIG" description:"Directory holding the config file" default:"$HOME/.sgplaces"`
	Output    string        `short:"o" long:"output"     description:"KML file to write, defaults to export-<date>.kml"`
	NoIndex   bool          `long:"no-index"             description:"Do not copy fetched features into the index"`
	Timeout   time.Duration `short:"t" long:"timeout"    description:"Overall timeout" default:"1m"`

	Args struct {
		Handles []string `positional-arg-name:"HANDLE" required:"1"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	v, err := config.Load(opts.ConfigDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	client := config.NewClient(v)
	features, err := placesapi.Features(ctx, client, opts.Args.Handles)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch features")
	}
	log.Info().Int("features", len(features)).Msg("Fetched features")

	if !opts.NoIndex {
		index, err := config.NewIndex(v)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to index")
		}
		if index != nil {
			if err := index.EnsureIndex(ctx); err != nil {
				log.Fatal().Err(err).Msg("Failed to prepare index")
			}
			for _, f := range features {
				if err := index.Put(ctx, f); err != nil {
					log.Warn().Err(err).Str("handle", f.ID).Msg("Failed to index feature")
				}
			}
		}
	}

	output := opts.Output
	if output == "" {
		output = fmt.Sprintf("export-%s.kml", time.Now().Format(DatePattern))
	}

	w, err := os.Create(output)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output")
	}
	defer w.Close()

	if err := placesapi.BuildKML(features).WriteIndent(w, "", "  "); err != nil {
		log.Fatal().Err(err).Msg("Failed to write KML")
	}
	log.Info().Str("file", output).Msg("KML export written")
}
