package domain

import "time"

// VehicleStatus represents the availability state of a vehicle.
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusInUse       VehicleStatus = "in_use"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

// VehicleCompany represents the operator that owns a vehicle.
type VehicleCompany string

const (
	CompanyTier VehicleCompany = "tier"
	CompanyLime VehicleCompany = "lime"
	CompanyBird VehicleCompany = "bird"
)

// VehicleType represents the kind of vehicle.
type VehicleType string

const (
	VehicleTypeScooter VehicleType = "scooter"
	VehicleTypeBike    VehicleType = "bike"
)

// Vehicle represents a shared scooter or bike in the inventory pool.
// Vehicles are not owned by any user; Status is the concurrency-control signal.
type Vehicle struct {
	ID          string
	Company     VehicleCompany
	Type        VehicleType
	Lat         float64
	Lng         float64
	Battery     int
	PricePerMin float64
	Status      VehicleStatus
	Canton      string // empty when reverse geocoding was unavailable
	Distrito    string
	Reserved    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VehicleStats aggregates fleet availability counts.
type VehicleStats struct {
	Available        int `json:"available"`
	InUse            int `json:"in_use"`
	Maintenance      int `json:"maintenance"`
	ScooterAvailable int `json:"scooter_available"`
	BikeAvailable    int `json:"bike_available"`
}
