package model

import "time"

// Appointment records a user's booking for one or more services on a
// given date and time slot. The services' name and price are copied into
// AppointmentService rows at booking time so later catalog edits do not
// retroactively change the booked amount. The (date, time) pair is unique
// across the table, which is what prevents two callers from booking the
// same slot.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who booked the appointment.
//  Date      – calendar day of the appointment (stored as DATE).
//  Time      – slot label within the day, e.g. "10:30".
//  Total     – total amount, computed from the snapshot rows.
//  Services  – snapshot rows captured at booking/update time.
//  User      – owner, resolved on reads (name/email only).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Appointment struct {
	ID        uint64               `json:"id"`
	UserID    uint64               `json:"-"`
	Date      time.Time            `json:"date"`
	Time      string               `json:"time"`
	Total     float64              `json:"totalAmount"`
	Services  []AppointmentService `json:"services,omitempty"`
	User      *AppointmentUser     `json:"user,omitempty"`
	CreatedAt time.Time            `json:"-"`
	UpdatedAt time.Time            `json:"-"`
}

// AppointmentService is one snapshot row of an appointment: the referenced
// service plus its name and price as they were when the booking was made
// or last updated.
type AppointmentService struct {
	ServiceID uint64  `json:"serviceId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// AppointmentUser is the reduced owner view embedded in appointment
// listings. Only name and email are exposed.
type AppointmentUser struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
