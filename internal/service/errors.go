package service

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login or password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidAmount is returned when a wallet amount is not positive.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientFunds is returned when a debit would make the balance negative.
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrInvalidCompany is returned when the vehicle company is unknown.
	ErrInvalidCompany = errors.New("invalid vehicle company")

	// ErrInvalidVehicleType is returned when the vehicle type is unknown.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidStatus is returned when the vehicle status is unknown.
	ErrInvalidStatus = errors.New("invalid vehicle status")

	// ErrInvalidBattery is returned when battery is outside 0-100.
	ErrInvalidBattery = errors.New("battery must be between 0 and 100")

	// ErrInvalidPrice is returned when price per minute is not positive.
	ErrInvalidPrice = errors.New("price per minute must be greater than zero")

	// ErrOutsideServiceArea is returned when coordinates fall outside the
	// configured service region.
	ErrOutsideServiceArea = errors.New("coordinates outside the service area")

	// ErrVehicleExistsAtLocation is returned when a vehicle already sits at
	// the exact coordinates.
	ErrVehicleExistsAtLocation = errors.New("vehicle already exists at these coordinates")

	// ErrVehicleNotAvailable is returned when reserving a vehicle that is not available.
	ErrVehicleNotAvailable = errors.New("vehicle not available")

	// ErrVehicleNotInUse is returned when releasing a vehicle that is not in use.
	ErrVehicleNotInUse = errors.New("vehicle not in use")

	// ErrVehicleInUse is returned when moving an in-use vehicle to maintenance.
	ErrVehicleInUse = errors.New("vehicle is attached to an ongoing trip")

	// ErrActiveTripExists is returned when starting a trip while one is ongoing.
	ErrActiveTripExists = errors.New("user already has an ongoing trip")

	// ErrNoActiveTrip is returned when finishing or cancelling without an ongoing trip.
	ErrNoActiveTrip = errors.New("no ongoing trip for user")

	// ErrNotTripOwner is returned when reading a trip that belongs to another user.
	ErrNotTripOwner = errors.New("trip belongs to another user")

	// ErrDuplicatePaymentMethod is returned when the card is already stored.
	ErrDuplicatePaymentMethod = errors.New("payment method already registered")

	// ErrNotMethodOwner is returned when mutating another user's payment method.
	ErrNotMethodOwner = errors.New("payment method belongs to another user")

	// ErrInvalidDuration is returned when trip duration is negative.
	ErrInvalidDuration = errors.New("duration must not be negative")
)
