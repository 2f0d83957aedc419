package model

import "time"

// Comment is a free-text note left by an authenticated user on a catalog
// service. Comments are create-only; there is no update or delete path.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – authoring user.
//  ServiceID – target service.
//  Body      – comment text.
//  Rating    – optional 1–5 rating, nil when not provided.
//  User      – author, resolved on reads (name/email only).
//  Service   – target service name, resolved on reads.
//  CreatedAt – creation timestamp.
type Comment struct {
	ID        uint64           `json:"id"`
	UserID    uint64           `json:"-"`
	ServiceID uint64           `json:"serviceId"`
	Body      string           `json:"body"`
	Rating    *int             `json:"rating,omitempty"`
	User      *AppointmentUser `json:"user,omitempty"`
	Service   string           `json:"service,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
