package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sakif/scholarship-globe/internal/model"
)

// Scholarship API routes.
const (
	PathFetch = "/fetch-scholarships"
	PathSave  = "/scholarships/save"
	PathSaved = "/scholarships/saved"
)

// FetchScholarships runs a search for country (a country id or free text).
func (c *Client) FetchScholarships(ctx context.Context, country string) ([]model.Scholarship, error) {
	body, err := c.Post(ctx, PathFetch, map[string]string{"country": country})
	if err != nil {
		return nil, err
	}
	return decodeListings(body)
}

// SaveScholarship adds s to the session user's collection. The response body
// is ignored.
func (c *Client) SaveScholarship(ctx context.Context, s model.Scholarship) error {
	_, err := c.Post(ctx, PathSave, s.SavePayload())
	return err
}

// SavedScholarships lists the session user's collection, newest first.
func (c *Client) SavedScholarships(ctx context.Context) ([]model.Scholarship, error) {
	body, err := c.Get(ctx, PathSaved)
	if err != nil {
		return nil, err
	}
	return decodeListings(body)
}

// DeleteSaved removes one listing from the session user's collection.
func (c *Client) DeleteSaved(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, PathSaved+"/"+url.PathEscape(id))
	return err
}

// decodeListings turns a structured body into listings. A JSON null is an
// empty result, not an error.
func decodeListings(body Body) ([]model.Scholarship, error) {
	var listings []model.Scholarship
	if err := body.Decode(&listings); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("unexpected response: %v", err),
			Err:     err,
		}
	}
	if listings == nil {
		listings = []model.Scholarship{}
	}
	return listings, nil
}
