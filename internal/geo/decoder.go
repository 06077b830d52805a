package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/lutyjj/photkey-server/internal/config"
	"github.com/lutyjj/photkey-server/internal/domain"
)

// Resolver maps GPS coordinates to a human-readable place name.
// An empty result with a nil error means the coordinates resolved to
// nothing; domain.ErrGeoUnavailable means the endpoint itself was
// unreachable.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

// place mirrors the single field read from the Nominatim response body;
// everything else is ignored.
type place struct {
	DisplayName string `json:"display_name"`
}

type nominatimDecoder struct {
	baseURL  string
	language string
	client   *http.Client
	log      *zap.Logger
}

func NewDecoder(cfg *config.GeoConfig, log *zap.Logger) Resolver {
	return &nominatimDecoder{
		baseURL:  cfg.BaseURL,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

// Resolve performs one reverse-geocoding lookup. No caching, no retries.
func (d *nominatimDecoder) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("zoom", "10")
	query.Set("accept-language", d.language)
	query.Set("addressdetails", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		// Некорректный базовый URL в конфигурации.
		return "", fmt.Errorf("%w: %v", domain.ErrGeoUnavailable, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		// Таймаут и сетевые ошибки означают, что сервис недоступен.
		return "", fmt.Errorf("%w: %v", domain.ErrGeoUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.log.Warn("Nominatim returned non-OK status",
			zap.Int("status", resp.StatusCode))
		return "", nil
	}

	var p place
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		d.log.Warn("Failed to decode Nominatim response", zap.Error(err))
		return "", nil
	}

	d.log.Info("Nominatim response",
		zap.String("display_name", p.DisplayName))

	return p.DisplayName, nil
}
