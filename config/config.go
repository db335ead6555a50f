// Package config reads the client settings shared by the commands.
package config

import (
	"github.com/spf13/viper"

	"github.com/jdevelop/sgplaces/featureindex"
	"github.com/jdevelop/sgplaces/placesapi"
)

const (
	ClientKey    = "client.key"
	ClientSecret = "client.secret"
	APIHost      = "api.host"
	APIPort      = "api.port"
	APIVersion   = "api.version"
	IndexURL     = "index.url"
	IndexName    = "index.name"

	DefaultConfigPath = "$HOME/.sgplaces"
)

// Load reads the "config" file (any format viper understands) from paths,
// falling back to DefaultConfigPath.
func Load(paths ...string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("config")
	if len(paths) == 0 {
		paths = []string{DefaultConfigPath}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetDefault(APIHost, "api.simplegeo.com")
	v.SetDefault(APIPort, 80)
	v.SetDefault(APIVersion, placesapi.APIVersion)
	v.SetDefault(IndexName, "places")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

func NewClient(v *viper.Viper, opts ...placesapi.ClientOption) *placesapi.Client {
	opts = append([]placesapi.ClientOption{
		placesapi.WithHost(v.GetString(APIHost)),
		placesapi.WithPort(v.GetInt(APIPort)),
		placesapi.WithAPIVersion(v.GetString(APIVersion)),
	}, opts...)
	return placesapi.NewClient(v.GetString(ClientKey), v.GetString(ClientSecret), opts...)
}

// NewIndex returns nil when no index.url is configured.
func NewIndex(v *viper.Viper) (*featureindex.Store, error) {
	url := v.GetString(IndexURL)
	if url == "" {
		return nil, nil
	}
	return featureindex.Connect(v.GetString(IndexName), url)
}
