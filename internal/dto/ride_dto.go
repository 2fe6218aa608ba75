package dto

import "time"

type CreateRideRequest struct {
	Route             string    `json:"route"`
	StartLocationName string    `json:"start_location_name"`
	EndLocationName   string    `json:"end_location_name"`
	StartLatitude     float64   `json:"start_latitude"`
	StartLongitude    float64   `json:"start_longitude"`
	DepartureTime     time.Time `json:"departure_time"`
	SeatsAvailable    int       `json:"seats_available"`
	CarNumber         string    `json:"car_number"`
	CarModel          string    `json:"car_model"`
}

type UpdateSeatsRequest struct {
	SeatsAvailable int `json:"seats_available"`
}

type SearchRidesRequest struct {
	Start string     `json:"start"`
	End   string     `json:"end"`
	From  *time.Time `json:"from"`
	To    *time.Time `json:"to"`
}
