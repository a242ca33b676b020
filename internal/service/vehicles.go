package service

import (
	"context"
	"strings"

	"rentacar/internal/events"
	"rentacar/internal/models"
)

const (
	MsgVehicleFieldsRequired = "name, brand, model and type are required"
	MsgVehicleCapacity       = "capacity must be greater than zero"
	MsgVehiclePrice          = "price per day must be greater than zero"
	MsgVehicleKilometers     = "kilometers must not be negative"
	MsgVehicleNoChanges      = "no fields to update"
)

// cleanList trims entries and drops empty ones. The result is never nil.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeVehicleInput trims a new vehicle and reports every missing or invalid field.
func NormalizeVehicleInput(in models.VehicleInput) (models.VehicleInput, []string) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Type = strings.TrimSpace(in.Type)
	in.InsurancePhone = strings.TrimSpace(in.InsurancePhone)
	in.MainImageURL = strings.TrimSpace(in.MainImageURL)
	in.Features = cleanList(in.Features)
	in.ImageURLs = cleanList(in.ImageURLs)

	var errs []string
	if in.Name == "" || in.Brand == "" || in.Model == "" || in.Type == "" {
		errs = append(errs, MsgVehicleFieldsRequired)
	}
	if in.Capacity <= 0 {
		errs = append(errs, MsgVehicleCapacity)
	}
	if in.PricePerDay <= 0 {
		errs = append(errs, MsgVehiclePrice)
	}
	if in.Kilometers < 0 || in.KmForMaintenance < 0 {
		errs = append(errs, MsgVehicleKilometers)
	}
	return in, errs
}

// NormalizeVehiclePatch cleans a partial update and rejects empty or invalid ones.
func NormalizeVehiclePatch(p models.VehiclePatch) (models.VehiclePatch, []string) {
	if p.Empty() {
		return p, []string{MsgVehicleNoChanges}
	}

	var errs []string
	if p.PricePerDay != nil && *p.PricePerDay <= 0 {
		errs = append(errs, MsgVehiclePrice)
	}
	if (p.Kilometers != nil && *p.Kilometers < 0) || (p.KmForMaintenance != nil && *p.KmForMaintenance < 0) {
		errs = append(errs, MsgVehicleKilometers)
	}
	if p.Status != nil {
		status, err := models.ParseVehicleStatus(string(*p.Status))
		if *p.Status == "" {
			errs = append(errs, "status required")
		} else if err != nil {
			errs = append(errs, err.Error())
		} else {
			p.Status = &status
		}
	}
	if p.Features != nil {
		features := cleanList(*p.Features)
		p.Features = &features
	}
	if p.ImageURLs != nil {
		urls := cleanList(*p.ImageURLs)
		p.ImageURLs = &urls
	}
	if p.InsurancePhone != nil {
		phone := strings.TrimSpace(*p.InsurancePhone)
		p.InsurancePhone = &phone
	}
	return p, errs
}

func (s *ReservationService) CreateVehicle(ctx context.Context, in models.VehicleInput) (*models.Vehicle, error) {
	in, errs := NormalizeVehicleInput(in)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	created, err := s.vehicles.CreateVehicle(ctx, in)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", in.Name).Msg("create vehicle failed")
		return nil, err
	}
	s.publish(events.EventVehicleCreated, events.VehiclePayload{VehicleID: created.ID.String(), Name: created.Name})
	return created, nil
}

func (s *ReservationService) UpdateVehicle(ctx context.Context, id models.ID, patch models.VehiclePatch) (*models.Vehicle, error) {
	if id.IsZero() {
		return nil, &ValidationError{Errors: []string{MsgVehicleRequired}}
	}
	patch, errs := NormalizeVehiclePatch(patch)
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	updated, err := s.vehicles.UpdateVehicle(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventVehicleUpdated, events.VehiclePayload{VehicleID: id.String(), Name: updated.Name})
	return updated, nil
}

func (s *ReservationService) DeleteVehicle(ctx context.Context, id models.ID) error {
	if id.IsZero() {
		return &ValidationError{Errors: []string{MsgVehicleRequired}}
	}
	if err := s.vehicles.DeleteVehicle(ctx, id); err != nil {
		return err
	}
	s.publish(events.EventVehicleDeleted, events.VehiclePayload{VehicleID: id.String()})
	return nil
}
