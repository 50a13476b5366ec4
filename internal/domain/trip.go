package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Trip represents an active or finished rental session.
// VehicleID may be empty for manually entered trips. A user has at most
// one trip in the ongoing state at any time.
type Trip struct {
	ID              string
	UserID          string
	VehicleID       string
	Status          TripStatus
	StartTime       time.Time
	EndTime         time.Time
	StartLat        float64
	StartLng        float64
	EndLat          float64
	EndLng          float64
	StartAddress    string
	EndAddress      string
	DurationMinutes float64
	Distance        float64
	Price           float64
	CreatedAt       time.Time
}

// TripStats aggregates a user's trip history.
type TripStats struct {
	TotalTrips     int     `json:"total_trips"`
	CompletedTrips int     `json:"completed_trips"`
	CancelledTrips int     `json:"cancelled_trips"`
	TotalDistance  float64 `json:"total_distance"`
	TotalMinutes   float64 `json:"total_minutes"`
	TotalSpent     float64 `json:"total_spent"`
}
