// Package queue defines the appointment lifecycle events exchanged over
// the message broker and the background consumer that turns them into
// emails. Publishing after the database commit keeps notification
// failures isolated from the booking itself.
package queue

// Event kinds for AppointmentEvent.Kind.
const (
	KindBooked    = "booked"
	KindUpdated   = "updated"
	KindCancelled = "cancelled"
)

// QueueName is the durable queue holding appointment lifecycle events.
const QueueName = "appointment.events"

// AppointmentEvent is published when an appointment is created, updated
// or cancelled. It carries everything the mail consumer needs so no
// database lookup happens on the consuming side.
type AppointmentEvent struct {
	Kind          string   `json:"kind"`
	AppointmentID uint64   `json:"appointment_id"`
	UserName      string   `json:"user_name"`
	UserEmail     string   `json:"user_email"`
	Date          string   `json:"date"` // dd/MM/yyyy
	Time          string   `json:"time"`
	Services      []string `json:"services"`
	Total         float64  `json:"total"`
	OccurredAt    string   `json:"occurred_at"`
}
