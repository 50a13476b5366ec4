package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Location holds the administrative region labels for a coordinate pair.
// Empty fields mean the lookup could not resolve them.
type Location struct {
	Canton   string
	Distrito string
}

// Geocoder resolves coordinates to region labels. Lookups are best effort:
// implementations return an empty Location rather than failing the caller.
type Geocoder interface {
	ReverseLookup(ctx context.Context, lat, lng float64) Location
}

// NominatimGeocoder resolves locations against the OpenStreetMap Nominatim
// reverse endpoint.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimGeocoder creates a geocoder against the given Nominatim base URL.
// The client timeout bounds the one external call in the vehicle-creation path.
func NewNominatimGeocoder(baseURL, userAgent string, client *http.Client) *NominatimGeocoder {
	if client == nil {
		client = http.DefaultClient
	}
	return &NominatimGeocoder{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    client,
	}
}

// nominatimResponse is the subset of the reverse response we read.
type nominatimResponse struct {
	Address struct {
		CityDistrict  string `json:"city_district"`
		Town          string `json:"town"`
		County        string `json:"county"`
		Municipality  string `json:"municipality"`
		Neighbourhood string `json:"neighbourhood"`
		Village       string `json:"village"`
		Suburb        string `json:"suburb"`
		Hamlet        string `json:"hamlet"`
	} `json:"address"`
}

// ReverseLookup queries Nominatim for canton/distrito labels. Any failure
// (network, HTTP status, decode) yields an empty Location.
func (g *NominatimGeocoder) ReverseLookup(ctx context.Context, lat, lng float64) Location {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lng))
	query.Set("zoom", "18")
	query.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return Location{}
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return Location{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}
	}

	// Canton maps to city_district or town in Costa Rica; the plain "city"
	// field resolves to the metropolitan area and is deliberately skipped.
	canton := firstNonEmpty(body.Address.CityDistrict, body.Address.Town, body.Address.County, body.Address.Municipality)
	distrito := firstNonEmpty(body.Address.Neighbourhood, body.Address.Village, body.Address.Suburb, body.Address.Hamlet)

	return Location{Canton: canton, Distrito: distrito}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NullGeocoder always returns an empty Location. Used when no geocoding
// backend is configured.
type NullGeocoder struct{}

// ReverseLookup returns an empty Location.
func (NullGeocoder) ReverseLookup(ctx context.Context, lat, lng float64) Location {
	return Location{}
}

// Ensure implementations satisfy Geocoder.
var (
	_ Geocoder = (*NominatimGeocoder)(nil)
	_ Geocoder = NullGeocoder{}
)
