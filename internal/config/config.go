package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ProviderTimeout bounds each outbound provider request. Zero disables it.
	ProviderTimeout time.Duration

	// Request localization shared by the backends.
	Locale             string // e.g. uk_UA
	Language           string // e.g. uk
	CountryCodes       string // Nominatim countrycodes filter, e.g. ua
	NominatimUserAgent string

	// Backend credentials. A backend whose credentials are empty is not registered.
	TwoGISKey       string
	YandexAPIKey    string
	HereAppID       string
	HereAppCode     string
	BingKey         string
	GooglePlacesKey string
	GooglePlacesURL string
	MapboxToken     string

	// Kafka wiring for the selection pipeline and mutation submission.
	KafkaEnabled        bool
	KafkaBrokers        []string
	KafkaSelectionTopic string
	KafkaCandidateTopic string
	KafkaMutationTopic  string
	KafkaGroupID        string

	BatchSize          int
	BatchFlushInterval time.Duration
	// LookupConcurrency bounds concurrent selection lookups within one batch.
	LookupConcurrency int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	providerTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("PROVIDER_TIMEOUT", "10s"))
	if err != nil || providerTimeout < 0 {
		return nil, errors.New("invalid PROVIDER_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	lookupConcurrency, err := strconv.Atoi(sharedcfg.EnvOrDefault("LOOKUP_CONCURRENCY", "4"))
	if err != nil || lookupConcurrency < 1 {
		return nil, errors.New("invalid LOOKUP_CONCURRENCY")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ProviderTimeout: providerTimeout,

		Locale:             sharedcfg.EnvOrDefault("LOCALE", "uk_UA"),
		Language:           sharedcfg.EnvOrDefault("LANGUAGE", "uk"),
		CountryCodes:       sharedcfg.EnvOrDefault("COUNTRY_CODES", "ua"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "poi-address-fetch"),

		TwoGISKey:       os.Getenv("TWOGIS_KEY"),
		YandexAPIKey:    os.Getenv("YANDEX_API_KEY"),
		HereAppID:       os.Getenv("HERE_APP_ID"),
		HereAppCode:     os.Getenv("HERE_APP_CODE"),
		BingKey:         os.Getenv("BING_KEY"),
		GooglePlacesKey: os.Getenv("GOOGLE_PLACES_KEY"),
		GooglePlacesURL: sharedcfg.EnvOrDefault("GOOGLE_PLACES_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
		MapboxToken:     os.Getenv("MAPBOX_TOKEN"),

		KafkaEnabled:        strings.EqualFold(os.Getenv("KAFKA_ENABLED"), "true"),
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSelectionTopic: sharedcfg.EnvOrDefault("KAFKA_SELECTION_TOPIC", "venue-selections"),
		KafkaCandidateTopic: sharedcfg.EnvOrDefault("KAFKA_CANDIDATE_TOPIC", "address-candidates"),
		KafkaMutationTopic:  sharedcfg.EnvOrDefault("KAFKA_MUTATION_TOPIC", "venue-field-updates"),
		KafkaGroupID:        sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "poi-address-fetch"),

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		LookupConcurrency:  lookupConcurrency,
	}

	if (cfg.HereAppID == "") != (cfg.HereAppCode == "") {
		return nil, errors.New("HERE_APP_ID and HERE_APP_CODE must be set together")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSelectionTopic == "" || cfg.KafkaCandidateTopic == "" || cfg.KafkaMutationTopic == "" {
			return nil, errors.New("kafka topics must not be empty when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}
