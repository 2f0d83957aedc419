package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/appsalon/booking-api/internal/mailer"
)

// StartConsumer connects to RabbitMQ, declares the appointment queue and
// delivers each event as an email through the mailer. It runs a reconnect
// loop with exponential backoff and never returns under normal operation;
// processing errors are logged and the offending message is rejected
// without requeue so a bad payload cannot wedge the queue.
func StartConsumer(url string, m *mailer.Mailer) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, m); err != nil {
			log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, m *mailer.Mailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("mail-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleEvent(d.Body, m); err != nil {
			log.Printf("mail-consumer: handle event failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleEvent(body []byte, m *mailer.Mailer) error {
	var ev AppointmentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	switch ev.Kind {
	case KindBooked:
		return m.SendAppointmentBooked(ev.UserEmail, ev.UserName, ev.Date, ev.Time)
	case KindUpdated:
		return m.SendAppointmentUpdated(ev.UserEmail, ev.UserName, ev.Date, ev.Time)
	case KindCancelled:
		return m.SendAppointmentCancelled(ev.UserEmail, ev.UserName, ev.Date, ev.Time)
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}
