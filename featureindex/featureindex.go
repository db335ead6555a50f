// Package featureindex keeps a local Elasticsearch copy of places features,
// searchable through a geo_shape mapping on their GeoJSON geometry.
package featureindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog/log"

	"github.com/jdevelop/sgplaces/placesapi"
)

var (
	ErrNotFound = errors.New("feature not found in index")
	ErrNoID     = errors.New("feature has neither handle nor record_id")
)

const mapping = `{
	"mappings": {
		"properties": {
			"geometry": {
				"type": "geo_shape"
			},
			"created": {
				"type": "date",
				"format": "epoch_second"
			},
			"properties": {
				"properties": {
					"record_id": {
						"type": "keyword"
					}
				}
			}
		}
	}
}`

type Store struct {
	client *elasticsearch.Client
	index  string
}

func New(client *elasticsearch.Client, index string) *Store {
	return &Store{client: client, index: index}
}

// Connect builds a client for the given addresses and wraps it in a Store.
func Connect(index string, addresses ...string) (*Store, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, err
	}
	return New(es, index), nil
}

// EnsureIndex creates the index with the geo_shape mapping unless it exists.
func (s *Store) EnsureIndex(ctx context.Context) error {
	resp, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("error checking index %s: %s", s.index, resp.Status())
	}

	resp, err = s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return responseError("creating index "+s.index, resp)
	}
	log.Info().Str("index", s.index).Msg("Created feature index")
	return nil
}

// DocumentID is the handle when the service assigned one, else the record_id.
func DocumentID(f *placesapi.Feature) (string, error) {
	if f.ID != "" {
		return f.ID, nil
	}
	if id, ok := f.Properties.RecordID(); ok && id != "" {
		return id, nil
	}
	return "", ErrNoID
}

// Put stores the feature's wire form, replacing any previous version.
func (s *Store) Put(ctx context.Context, f *placesapi.Feature) error {
	id, err := DocumentID(f)
	if err != nil {
		return err
	}

	body, err := json.Marshal(f)
	if err != nil {
		return err
	}

	resp, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(id),
		s.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return responseError("indexing feature "+id, resp)
	}
	log.Debug().Str("index", s.index).Str("id", id).Msg("Indexed feature")
	return nil
}

// Get loads and validates a stored feature.
func (s *Store) Get(ctx context.Context, id string) (*placesapi.Feature, error) {
	resp, err := s.client.Get(s.index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if resp.IsError() {
		return nil, responseError("getting feature "+id, resp)
	}

	var hit struct {
		Found  bool                   `json:"found"`
		Source map[string]interface{} `json:"_source"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hit); err != nil {
		return nil, err
	}
	if !hit.Found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return placesapi.FeatureFromMap(hit.Source)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	resp, err := s.client.Delete(
		s.index,
		id,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if resp.IsError() {
		return responseError("deleting feature "+id, resp)
	}
	return nil
}

func responseError(action string, resp *esapi.Response) error {
	content, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(content))
	if msg == "" {
		return fmt.Errorf("error %s: %s", action, resp.Status())
	}
	return fmt.Errorf("error %s: %s: %s", action, resp.Status(), msg)
}
