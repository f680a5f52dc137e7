package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/shenikar/tourist_safety/internal/apperr"
)

// ErrNotConfigured - токен Mapbox не задан
var ErrNotConfigured = errors.New("geocoder is not configured")

// ErrNoResult - для точки не найдено ни одного объекта
var ErrNoResult = errors.New("geocoder returned no features")

const featureTypes = "neighborhood,locality,place,poi"

// Mapbox - клиент обратного геокодирования Mapbox
type Mapbox struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewMapbox создает клиент с повторными попытками
func NewMapbox(baseURL, token string, timeout time.Duration) *Mapbox {
	rC := retryablehttp.NewClient()
	rC.Logger = nil
	rC.RetryMax = 2
	client := rC.StandardClient()
	client.Timeout = timeout

	return &Mapbox{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: client,
	}
}

type placesResponse struct {
	Features []struct {
		Text      string `json:"text"`
		PlaceName string `json:"place_name"`
	} `json:"features"`
}

// ReverseGeocode возвращает название района для точки
func (m *Mapbox) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	if m.token == "" {
		return "", apperr.Dependency("geocode", ErrNotConfigured)
	}

	coords := strconv.FormatFloat(lng, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
	q := url.Values{}
	q.Set("access_token", m.token)
	q.Set("types", featureTypes)
	q.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s", m.baseURL, coords, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperr.Dependency("geocode", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", apperr.Dependency("geocode", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.Dependency("geocode", fmt.Errorf("mapbox responded with status %d", resp.StatusCode))
	}

	var body placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperr.Dependency("geocode", fmt.Errorf("failed to decode mapbox response: %w", err))
	}

	for _, f := range body.Features {
		if name := strings.TrimSpace(f.Text); name != "" {
			return name, nil
		}
	}
	return "", apperr.Dependency("geocode", ErrNoResult)
}
