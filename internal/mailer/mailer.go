// Package mailer sends the transactional emails of the booking flow over
// SMTP. Account emails (verification, password reset) are sent directly
// by the auth handler; appointment lifecycle emails are rendered here but
// triggered by the queue consumer.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/appsalon/booking-api/internal/config"
)

// Mailer wraps a gomail dialer with the application's templates. When no
// SMTP host is configured every send becomes a no-op so development
// environments work without a mail server.
type Mailer struct {
	cfg    config.SMTPConfig
	appURL string
}

func New(cfg config.SMTPConfig, appURL string) *Mailer {
	return &Mailer{cfg: cfg, appURL: appURL}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.cfg.Host != "" }

func (m *Mailer) send(to, subject, body string) error {
	if !m.Enabled() {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	return d.DialAndSend(msg)
}

// SendVerification mails the account confirmation link.
func (m *Mailer) SendVerification(to, name, token string) error {
	link := m.appURL + "/auth/confirmar-cuenta/" + token
	body := fmt.Sprintf(`<p>Hola %s, comprueba tu cuenta en AppSalon.</p>
<p>Tu cuenta está casi lista, solo debes comprobarla en el siguiente enlace:</p>
<a href="%s">Comprobar cuenta</a>
<p>Si tú no creaste esta cuenta, puedes ignorar este mensaje.</p>`, name, link)
	return m.send(to, "AppSalon - Confirma tu cuenta", body)
}

// SendPasswordReset mails the password reset link.
func (m *Mailer) SendPasswordReset(to, name, token string) error {
	link := m.appURL + "/auth/olvide-password/" + token
	body := fmt.Sprintf(`<p>Hola %s, has solicitado reestablecer tu contraseña.</p>
<p>Sigue el siguiente enlace para generar una nueva:</p>
<a href="%s">Reestablecer contraseña</a>
<p>Si tú no solicitaste este cambio, puedes ignorar este mensaje.</p>`, name, link)
	return m.send(to, "AppSalon - Reestablece tu contraseña", body)
}

// SendAppointmentBooked notifies the user that the booking was created.
func (m *Mailer) SendAppointmentBooked(to, name, date, hour string) error {
	body := fmt.Sprintf(`<p>Hola %s:</p>
<p>Tu reservación ha sido confirmada para el día %s a las %s horas.</p>
<p>Si necesitas hacer algún cambio, puedes gestionarlo desde tu cuenta.</p>`, name, date, hour)
	return m.send(to, "AppSalon - Nueva reservación", body)
}

// SendAppointmentUpdated notifies the user that the booking changed.
func (m *Mailer) SendAppointmentUpdated(to, name, date, hour string) error {
	body := fmt.Sprintf(`<p>Hola %s:</p>
<p>Tu reservación ha sido modificada y quedó para el día %s a las %s horas.</p>`, name, date, hour)
	return m.send(to, "AppSalon - Reservación actualizada", body)
}

// SendAppointmentCancelled notifies the user that the booking was removed.
func (m *Mailer) SendAppointmentCancelled(to, name, date, hour string) error {
	body := fmt.Sprintf(`<p>Hola %s:</p>
<p>Tu reservación del día %s a las %s horas ha sido cancelada.</p>`, name, date, hour)
	return m.send(to, "AppSalon - Reservación cancelada", body)
}
