package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"rentacar/internal/models"
)

const vehiclesCacheKey = "vehicles:all"

func vehicleCacheKey(id models.ID) string {
	return "vehicles:" + id.String()
}

type rawVehicle struct {
	ID               models.ID   `json:"id"`
	Name             string      `json:"name"`
	Brand            string      `json:"brand"`
	Model            string      `json:"model"`
	Capacity         number      `json:"capacity"`
	VehicleType      vehicleType `json:"vehicleType"`
	Type             string      `json:"type"`
	PricePerDay      number      `json:"pricePerDay"`
	Kilometers       number      `json:"kilometers"`
	KmForMaintenance number      `json:"kmForMaintenance"`
	Features         []string    `json:"features"`
	MainImageURL     string      `json:"mainImageUrl"`
	ImageURLs        []string    `json:"imageUrls"`
	Status           string      `json:"status"`
	InsurancePhone   string      `json:"insurancePhone"`
	CreatedAt        string      `json:"createdAt"`
	UpdatedAt        string      `json:"updatedAt"`
}

func normalizeVehicle(raw rawVehicle) models.Vehicle {
	v := models.Vehicle{
		ID:               raw.ID,
		Name:             raw.Name,
		Brand:            raw.Brand,
		Model:            raw.Model,
		Type:             firstNonEmpty(string(raw.VehicleType), raw.Type, models.PlaceholderVehicleType),
		Capacity:         int(raw.Capacity),
		PricePerDay:      float64(raw.PricePerDay),
		Kilometers:       int64(raw.Kilometers),
		KmForMaintenance: int64(raw.KmForMaintenance),
		Features:         raw.Features,
		MainImageURL:     raw.MainImageURL,
		ImageURLs:        raw.ImageURLs,
		Status:           models.VehicleStatus(raw.Status),
		InsurancePhone:   raw.InsurancePhone,
		CreatedAt:        parseTimestamp(raw.CreatedAt),
		UpdatedAt:        parseTimestamp(raw.UpdatedAt),
	}
	if v.Status == "" {
		v.Status = models.VehicleMaintenanceCompleted
	}
	if v.Features == nil {
		v.Features = []string{}
	}
	if v.ImageURLs == nil {
		v.ImageURLs = []string{}
	}
	return v
}

func (c *Client) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var cached []models.Vehicle
	if c.readCache(ctx, vehiclesCacheKey, &cached) {
		return cached, nil
	}

	var raw []rawVehicle
	err := c.do(ctx, call{
		op:       "list_vehicles",
		method:   http.MethodGet,
		path:     "/vehicles",
		fallback: "failed to load vehicles",
	}, &raw)
	if err != nil {
		return nil, err
	}

	out := make([]models.Vehicle, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeVehicle(r))
	}
	c.writeCache(ctx, vehiclesCacheKey, out)
	return out, nil
}

// GetVehicle fetches one vehicle. A 404 from the item endpoint falls back to a
// lookup in the full list.
func (c *Client) GetVehicle(ctx context.Context, id models.ID) (*models.Vehicle, error) {
	var cached models.Vehicle
	if c.readCache(ctx, vehicleCacheKey(id), &cached) {
		return &cached, nil
	}

	var raw rawVehicle
	err := c.do(ctx, call{
		op:       "get_vehicle",
		method:   http.MethodGet,
		path:     "/vehicles/" + url.PathEscape(id.String()),
		fallback: "failed to load vehicle",
	}, &raw)
	if errors.Is(err, ErrNotFound) {
		return c.findVehicle(ctx, id, err)
	}
	if err != nil {
		return nil, err
	}

	v := normalizeVehicle(raw)
	c.writeCache(ctx, vehicleCacheKey(id), v)
	return &v, nil
}

func (c *Client) findVehicle(ctx context.Context, id models.ID, notFound error) (*models.Vehicle, error) {
	all, err := c.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, notFound
}

// UpdateVehicleStatus moves a vehicle to another stored maintenance state.
func (c *Client) UpdateVehicleStatus(ctx context.Context, id models.ID, status models.VehicleStatus) (*models.Vehicle, error) {
	var raw rawVehicle
	err := c.do(ctx, call{
		op:       "update_vehicle_status",
		method:   http.MethodPut,
		path:     "/vehicles/" + url.PathEscape(id.String()),
		body:     map[string]string{"status": string(status)},
		fallback: "failed to update vehicle",
	}, &raw)
	if err != nil {
		return nil, err
	}
	c.dropCache(ctx, vehiclesCacheKey, vehicleCacheKey(id))

	if raw.ID.IsZero() {
		// the API may answer with an empty body
		return &models.Vehicle{ID: id, Status: status}, nil
	}
	v := normalizeVehicle(raw)
	return &v, nil
}

type vehicleTypeBody struct {
	Type string `json:"type"`
}

// createVehicleBody is the shape the API expects for a new vehicle.
type createVehicleBody struct {
	Name             string               `json:"name"`
	Brand            string               `json:"brand"`
	Model            string               `json:"model"`
	Capacity         int                  `json:"capacity"`
	PricePerDay      float64              `json:"pricePerDay"`
	Kilometers       int64                `json:"kilometers"`
	InsurancePhone   string               `json:"insurancePhone"`
	KmForMaintenance int64                `json:"kmForMaintenance"`
	Features         []string             `json:"features"`
	VehicleType      vehicleTypeBody      `json:"vehicleType"`
	MainImageURL     string               `json:"mainImageUrl"`
	ImageURLs        []string             `json:"imageUrls"`
	Status           models.VehicleStatus `json:"status"`
}

// CreateVehicle registers a vehicle. New vehicles start as maintenanceCompleted.
func (c *Client) CreateVehicle(ctx context.Context, in models.VehicleInput) (*models.Vehicle, error) {
	body := createVehicleBody{
		Name:             in.Name,
		Brand:            in.Brand,
		Model:            in.Model,
		Capacity:         in.Capacity,
		PricePerDay:      in.PricePerDay,
		Kilometers:       in.Kilometers,
		InsurancePhone:   in.InsurancePhone,
		KmForMaintenance: in.KmForMaintenance,
		Features:         in.Features,
		VehicleType:      vehicleTypeBody{Type: in.Type},
		MainImageURL:     in.MainImageURL,
		ImageURLs:        in.ImageURLs,
		Status:           models.VehicleMaintenanceCompleted,
	}

	var raw rawVehicle
	err := c.do(ctx, call{
		op:       "create_vehicle",
		method:   http.MethodPost,
		path:     "/vehicles",
		body:     body,
		fallback: "failed to create vehicle",
	}, &raw)
	if err != nil {
		return nil, err
	}
	c.dropCache(ctx, vehiclesCacheKey)

	if raw.ID.IsZero() && raw.Name == "" {
		raw = rawVehicle{
			Name: in.Name, Brand: in.Brand, Model: in.Model, Type: in.Type,
			Capacity: number(in.Capacity), PricePerDay: number(in.PricePerDay),
			Kilometers: number(in.Kilometers), KmForMaintenance: number(in.KmForMaintenance),
			Features: in.Features, MainImageURL: in.MainImageURL, ImageURLs: in.ImageURLs,
			InsurancePhone: in.InsurancePhone,
		}
	}
	v := normalizeVehicle(raw)
	return &v, nil
}

// UpdateVehicle sends only the fields set in patch.
func (c *Client) UpdateVehicle(ctx context.Context, id models.ID, patch models.VehiclePatch) (*models.Vehicle, error) {
	var raw rawVehicle
	err := c.do(ctx, call{
		op:       "update_vehicle",
		method:   http.MethodPut,
		path:     "/vehicles/" + url.PathEscape(id.String()),
		body:     patch,
		fallback: "failed to update vehicle",
	}, &raw)
	if err != nil {
		return nil, err
	}
	c.dropCache(ctx, vehiclesCacheKey, vehicleCacheKey(id))

	if raw.ID.IsZero() {
		return c.GetVehicle(ctx, id)
	}
	v := normalizeVehicle(raw)
	return &v, nil
}

func (c *Client) DeleteVehicle(ctx context.Context, id models.ID) error {
	err := c.do(ctx, call{
		op:       "delete_vehicle",
		method:   http.MethodDelete,
		path:     "/vehicles/" + url.PathEscape(id.String()),
		fallback: "failed to delete vehicle",
	}, nil)
	if err != nil {
		return err
	}
	c.dropCache(ctx, vehiclesCacheKey, vehicleCacheKey(id))
	return nil
}
