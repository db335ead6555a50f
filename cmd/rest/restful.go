package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/jdevelop/sgplaces/config"
	"github.com/jdevelop/sgplaces/featureindex"
	"github.com/jdevelop/sgplaces/logger"
	"github.com/jdevelop/sgplaces/placesapi"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigDir string `short:"c" long:"config-dir" env:"SGPLACES_CONFIG" description:"Directory holding the config file" default:"$HOME/.sgplaces"`
	Host      string `long:"host"   env:"LISTEN_ADDRESS" description:"Address to listen on" default:"localhost"`
	Port      int    `short:"p" long:"port"   env:"LISTEN_PORT" description:"Port to listen on" default:"8080"`
	Prefix    string `long:"prefix" description:"URL prefix, must end with /" default:"/api/"`
}

type service struct {
	client *placesapi.Client
	index  *featureindex.Store
}

func newRouter(svc *service, prefix string) *httprouter.Router {
	router := httprouter.New()
	router.GET(prefix+"features/:handle", svc.feature)
	router.GET(prefix+"export", svc.export)
	return router
}

// feature serves a single feature as GeoJSON, preferring the local index.
func (s *service) feature(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	handle := ps.ByName("handle")
	if !placesapi.IsValidHandle(handle) {
		http.Error(w, "invalid handle", http.StatusBadRequest)
		return
	}

	var f *placesapi.Feature
	if s.index != nil {
		cached, err := s.index.Get(r.Context(), handle)
		switch {
		case err == nil:
			f = cached
		case errors.Is(err, featureindex.ErrNotFound):
		default:
			log.Warn().Err(err).Str("handle", handle).Msg("Index lookup failed")
		}
	}

	if f == nil {
		fetched, err := s.client.Feature(r.Context(), handle)
		if err != nil {
			writeError(w, err)
			return
		}
		f = fetched
		if s.index != nil {
			if err := s.index.Put(r.Context(), f); err != nil {
				log.Warn().Err(err).Str("handle", handle).Msg("Failed to index feature")
			}
		}
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(f); err != nil {
		log.Error().Err(err).Msg("Failed to encode feature")
	}
}

func (s *service) export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	handles := r.URL.Query()["handle"]
	if len(handles) == 0 {
		http.Error(w, "missing handle query parameter", http.StatusBadRequest)
		return
	}

	features, err := placesapi.Features(r.Context(), s.client, handles)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Disposition", "attachment; filename=kml-export.kml")
	w.Header().Add("Content-Type", "application/vnd.google-earth.kml+xml")
	if err := placesapi.BuildKML(features).WriteIndent(w, "", "  "); err != nil {
		log.Error().Err(err).Msg("Failed to write KML")
	}
}

// requestLogger logs one line per handled request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeError(w http.ResponseWriter, err error) {
	var apiErr *placesapi.APIError
	if errors.As(err, &apiErr) {
		log.Warn().Err(err).Int("status", apiErr.Code).Msg("Places API error")
		http.Error(w, string(apiErr.Body), apiErr.Code)
		return
	}
	log.Error().Err(err).Msg("Failed to load feature")
	http.Error(w, err.Error(), http.StatusBadGateway)
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

	svc := &service{client: config.NewClient(v)}
	if svc.index, err = config.NewIndex(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to index")
	}
	if svc.index != nil {
		if err := svc.index.EnsureIndex(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare index")
		}
	}

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           requestLogger(newRouter(svc, opts.Prefix)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", addr).Bool("index", svc.index != nil).Msg("Web server started")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
