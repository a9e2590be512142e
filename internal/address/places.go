// Package address wraps the places-lookup service used by the intake form:
// ranked suggestions while typing, then a geocoding call whose structured
// components populate the manual-edit address fields.
package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/primedclinic/intake-service/internal/models"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Suggestion is one ranked autocomplete result.
type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

type autocompleteResponse struct {
	Status      string       `json:"status"`
	Predictions []Suggestion `json:"predictions"`
}

// Component is one structured part of a geocoded address.
type Component struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []Component `json:"address_components"`
	} `json:"results"`
}

var ErrLookupFailed = errors.New("address lookup failed")

// Suggest returns address predictions for partial input, restricted to
// Australian street addresses.
func (c *Client) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	q := url.Values{}
	q.Set("input", input)
	q.Set("types", "address")
	q.Set("components", "country:au")
	q.Set("key", c.apiKey)

	var resp autocompleteResponse
	if err := c.get(ctx, "/place/autocomplete/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, resp.Status)
	}
	return resp.Predictions, nil
}

// Geocode resolves a selected suggestion into its address components.
func (c *Client) Geocode(ctx context.Context, address string) ([]Component, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, resp.Status)
	}
	return resp.Results[0].AddressComponents, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrLookupFailed, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

// componentFields maps geocode component types onto intake form fields.
var componentFields = []struct {
	component string
	assign    func(f *models.IntakeForm, v string)
}{
	{"street_number", func(f *models.IntakeForm, v string) { f.StreetNumber = v }},
	{"route", func(f *models.IntakeForm, v string) { f.StreetName = v }},
	{"administrative_area_level_1", func(f *models.IntakeForm, v string) { f.State = v }},
	{"locality", func(f *models.IntakeForm, v string) { f.Suburb = v }},
	{"postal_code", func(f *models.IntakeForm, v string) { f.Postcode = v }},
}

// Apply decomposes geocode components into the structured address fields of
// the form. Missing components blank the corresponding field, leaving it to
// manual entry.
func Apply(form *models.IntakeForm, selected string, components []Component) {
	form.Address = selected
	find := func(wanted string) string {
		for _, comp := range components {
			for _, t := range comp.Types {
				if t == wanted {
					return comp.LongName
				}
			}
		}
		return ""
	}
	for _, f := range componentFields {
		f.assign(form, find(f.component))
	}
}
