package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/hopmap/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name     string
		config   geocoding.ProviderConfig
		wantType any
		wantErr  string
	}{
		{
			name:     "google with key and rate limit",
			config:   geocoding.ProviderConfig{Type: geocoding.ProviderTypeGoogle, APIKey: "test-api-key", RateLimit: 50},
			wantType: &geocoding.GoogleProvider{},
		},
		{
			name:     "google without rate limit",
			config:   geocoding.ProviderConfig{Type: geocoding.ProviderTypeGoogle, APIKey: "test-api-key"},
			wantType: &geocoding.GoogleProvider{},
		},
		{
			name:    "google without api key",
			config:  geocoding.ProviderConfig{Type: geocoding.ProviderTypeGoogle, RateLimit: 10},
			wantErr: "API key is required for Google provider",
		},
		{
			name:     "nominatim without api key",
			config:   geocoding.ProviderConfig{Type: geocoding.ProviderTypeNominatim},
			wantType: &geocoding.NominatimProvider{},
		},
		{
			name: "nominatim with self-hosted endpoint",
			config: geocoding.ProviderConfig{
				Type:             geocoding.ProviderTypeNominatim,
				BaseURL:          "http://nominatim.internal/search",
				AddressFallbacks: true,
				RateLimit:        5,
			},
			wantType: &geocoding.NominatimProvider{},
		},
		{
			name:    "unsupported provider type",
			config:  geocoding.ProviderConfig{Type: geocoding.ProviderType("mapbox"), APIKey: "key"},
			wantErr: "unsupported provider type: mapbox",
		},
		{
			name:    "empty provider type",
			config:  geocoding.ProviderConfig{},
			wantErr: "unsupported provider type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Logger = logger

			provider, err := geocoding.NewProvider(tt.config)

			if tt.wantErr != "" {
				require.Error(t, err)
				require.Nil(t, provider)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, provider)
		})
	}
}

func TestProviderType_Constants(t *testing.T) {
	assert.Equal(t, "google", string(geocoding.ProviderTypeGoogle))
	assert.Equal(t, "nominatim", string(geocoding.ProviderTypeNominatim))
}
