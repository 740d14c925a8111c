// Package weather provides the weather:coordinates and weather:current task
// methods backed by the OpenWeatherMap geocoding and one call APIs.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/viant/smalltalk/internal/upstream"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/service/cache"
	"github.com/viant/smalltalk/service/secret"
)

const name = "weather"

// Config represents the weather collaborator settings
type Config struct {
	GeoURL          string `json:"geoURL,omitempty" yaml:"geoURL,omitempty"`
	WeatherURL      string `json:"weatherURL,omitempty" yaml:"weatherURL,omitempty"`
	Units           string `json:"units,omitempty" yaml:"units,omitempty"`
	APIKeySecretURL string `json:"apiKeySecretURL,omitempty" yaml:"apiKeySecretURL,omitempty"`
	APIKey          string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
}

// DefaultConfig returns OpenWeatherMap endpoints with imperial units.
func DefaultConfig() *Config {
	return &Config{
		GeoURL:     "https://api.openweathermap.org/geo/1.0/direct",
		WeatherURL: "https://api.openweathermap.org/data/3.0/onecall",
		Units:      "imperial",
	}
}

// CoordinatesInput represents the location to geocode
type CoordinatesInput struct {
	Location string `json:"location"`
}

// Coordinates represents a geocoded location
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// CurrentInput represents the coordinates to report on. Error carries a
// geocoding failure forwarded by a catch fallback.
type CurrentInput struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Name  string   `json:"name,omitempty"`
	Error string   `json:"error,omitempty"`
}

// CurrentOutput represents current weather conditions
type CurrentOutput struct {
	Location string                 `json:"location,omitempty"`
	Lat      float64                `json:"lat"`
	Lon      float64                `json:"lon"`
	Current  map[string]interface{} `json:"current"`
}

// Service implements the weather task methods
type Service struct {
	config  *Config
	client  *http.Client
	secrets secret.Provider
	cache   *cache.Cache
	ttl     time.Duration
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "coordinates",
			Description: "Resolves a location name into latitude and longitude.",
			Input:       reflect.TypeOf(&CoordinatesInput{}),
			Output:      reflect.TypeOf(&Coordinates{}),
		},
		{
			Name:        "current",
			Description: "Returns current weather conditions for coordinates.",
			Input:       reflect.TypeOf(&CurrentInput{}),
			Output:      reflect.TypeOf(&CurrentOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "coordinates":
		return s.coordinates, nil
	case "current":
		return s.current, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) coordinates(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*CoordinatesInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Coordinates)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		return types.NewPermanentError("location is required", nil)
	}
	key := "coordinates:" + strings.ToLower(location)
	if cached, ok := s.cache.Get(key); ok {
		*output = cached.(Coordinates)
		return nil
	}
	apiKey, err := s.apiKey(ctx)
	if err != nil {
		return err
	}
	query := url.Values{}
	query.Set("q", location)
	query.Set("limit", "1")
	query.Set("appid", apiKey)
	data, err := upstream.Get(ctx, s.client, s.config.GeoURL+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	var places []Coordinates
	if err = json.Unmarshal(data, &places); err != nil {
		return types.NewPermanentError(fmt.Sprintf("invalid geocoding response: %v", err), err)
	}
	if len(places) == 0 {
		return types.NewPermanentError(fmt.Sprintf("no coordinates found for %s", location), nil)
	}
	*output = Coordinates{Lat: places[0].Lat, Lon: places[0].Lon, Name: location}
	s.cache.Set(key, *output, s.ttl)
	return nil
}

func (s *Service) current(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*CurrentInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*CurrentOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if input.Error != "" {
		return types.NewPermanentError("coordinates unavailable: "+input.Error, nil)
	}
	if input.Lat == nil || input.Lon == nil {
		return types.NewPermanentError("coordinates unavailable: lat and lon are required", nil)
	}
	lat := strconv.FormatFloat(*input.Lat, 'f', -1, 64)
	lon := strconv.FormatFloat(*input.Lon, 'f', -1, 64)
	key := "current:" + lat + "," + lon
	if cached, ok := s.cache.Get(key); ok {
		*output = cached.(CurrentOutput)
		return nil
	}
	apiKey, err := s.apiKey(ctx)
	if err != nil {
		return err
	}
	query := url.Values{}
	query.Set("lat", lat)
	query.Set("lon", lon)
	query.Set("units", s.config.Units)
	query.Set("exclude", "minutely,hourly,daily,alerts")
	query.Set("appid", apiKey)
	data, err := upstream.Get(ctx, s.client, s.config.WeatherURL+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	var response struct {
		Current map[string]interface{} `json:"current"`
	}
	if err = json.Unmarshal(data, &response); err != nil {
		return types.NewPermanentError(fmt.Sprintf("invalid weather response: %v", err), err)
	}
	if response.Current == nil {
		return types.NewPermanentError("weather response has no current conditions", nil)
	}
	*output = CurrentOutput{Location: input.Name, Lat: *input.Lat, Lon: *input.Lon, Current: response.Current}
	s.cache.Set(key, *output, s.ttl)
	log.Debug().Str("location", input.Name).Msg("fetched current weather")
	return nil
}

func (s *Service) apiKey(ctx context.Context) (string, error) {
	if s.config.APIKey != "" || s.secrets == nil || s.config.APIKeySecretURL == "" {
		return s.config.APIKey, nil
	}
	value, err := s.secrets.Secret(ctx, s.config.APIKeySecretURL)
	if err != nil {
		return "", types.NewPermanentError("weather api key unavailable", err)
	}
	return value, nil
}

// New creates a weather service
func New(config *Config, opts ...Option) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Service{config: config, client: upstream.NewClient(), ttl: cache.DefaultConfig().WeatherTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
