package handler_test

import (
	"context"
	"database/sql"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/queue"
)

// newContext builds an Echo context around a JSON request.
func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// asUser attaches an authenticated caller the way the Auth middleware does.
func asUser(c echo.Context, u model.User) {
	c.Set("user", u)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeMailer records sends on a channel so tests can wait for the
// fire-and-forget goroutines.
type fakeMailer struct{ sent chan string }

func newFakeMailer() *fakeMailer { return &fakeMailer{sent: make(chan string, 4)} }

func (f *fakeMailer) SendVerification(to, name, token string) error {
	f.sent <- "verification:" + to + ":" + token
	return nil
}

func (f *fakeMailer) SendPasswordReset(to, name, token string) error {
	f.sent <- "reset:" + to + ":" + token
	return nil
}

func (f *fakeMailer) waitSend(t *testing.T) string {
	t.Helper()
	select {
	case s := <-f.sent:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no mail was sent")
		return ""
	}
}

// fakePublisher captures appointment events instead of talking to a broker.
type fakePublisher struct{ events []queue.AppointmentEvent }

func (f *fakePublisher) Publish(_ context.Context, ev queue.AppointmentEvent) error {
	f.events = append(f.events, ev)
	return nil
}

// fakeStore is an in-memory ImageStore; deleteErr simulates storage outages.
type fakeStore struct {
	uploaded  []string
	deleted   []string
	deleteErr error
}

func (f *fakeStore) Upload(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	f.uploaded = append(f.uploaded, key)
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
