package apiclient

import (
	"context"
	"net/http"

	"github.com/fueltrackr/internal/model"
)

func (c *Client) MyTravels(ctx context.Context) ([]model.TravelLogEntry, error) {
	var out []model.TravelLogEntry
	if err := c.do(ctx, http.MethodGet, "/travels/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AllTravels(ctx context.Context) ([]model.TravelLogEntry, error) {
	var out []model.TravelLogEntry
	if err := c.do(ctx, http.MethodGet, "/travels/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTravel(ctx context.Context, entry model.NewTravelLog) error {
	return c.do(ctx, http.MethodPost, "/travels/", entry, nil)
}
