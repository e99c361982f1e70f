package models

import "time"

const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
)

type Booking struct {
	ID         string    `json:"_id"`
	CarID      string    `json:"carId"`
	CarModel   string    `json:"carModel"`
	UserEmail  string    `json:"userEmail"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookingDays is the fractional number of days between start and end.
// It is zero or negative when end does not follow start.
func BookingDays(start, end time.Time) float64 {
	return float64(end.Sub(start).Milliseconds()) / float64((24 * time.Hour).Milliseconds())
}

// NewBooking prices a pending booking of car for the given range.
func NewBooking(car Car, userEmail string, start, end, now time.Time) Booking {
	return Booking{
		CarID:      car.ID,
		CarModel:   car.Model(),
		UserEmail:  userEmail,
		StartDate:  start,
		EndDate:    end,
		Status:     StatusPending,
		TotalPrice: BookingDays(start, end) * car.DailyRate(),
		CreatedAt:  now,
	}
}
