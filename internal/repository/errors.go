// Package repository implements data access over database/sql. Sentinel
// errors defined here let handlers map failure scenarios onto HTTP
// statuses without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a record does not exist. Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrSlotTaken is returned when an appointment insert or update collides
// with the unique (date, time) constraint. Handlers translate it into an
// HTTP 409 response.
var ErrSlotTaken = errors.New("slot already booked")

// isDuplicate reports whether a MySQL error is a duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
