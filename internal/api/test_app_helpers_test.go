package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/careline/internal/db"
	"github.com/terraincognita07/careline/internal/i18n"
	"github.com/terraincognita07/careline/internal/services"
	"gorm.io/gorm"
)

var testZone = time.FixedZone("CST", 8*3600)

type testApp struct {
	t        *testing.T
	app      *fiber.App
	database *gorm.DB
}

// newTestApp serves the API over a fresh sqlite database with the clock
// fixed at 10:30 on the given day.
func newTestApp(t *testing.T, year int, month time.Month, day int) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "careline-api-test.db"))
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	manager, err := i18n.NewEmbeddedManager(i18n.LangZH)
	require.NoError(t, err)

	clock := services.FixedClock{Instant: time.Date(year, month, day, 10, 30, 0, 0, testZone)}
	handler, err := NewHandler(database, "test-secret-key", clock, manager, nil)
	require.NoError(t, err)

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{t: t, app: app, database: database}
}

func (ta *testApp) request(method string, path string, token string, body any) *http.Response {
	ta.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(ta.t, err)
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := ta.app.Test(request, -1)
	require.NoError(ta.t, err)
	return response
}

func (ta *testApp) decode(response *http.Response, target any) {
	ta.t.Helper()
	defer response.Body.Close()
	require.NoError(ta.t, json.NewDecoder(response.Body).Decode(target))
}

func (ta *testApp) register(phone string) string {
	ta.t.Helper()

	response := ta.request(http.MethodPost, "/api/auth/register", "", map[string]string{
		"phone":    phone,
		"password": "secret1",
	})
	require.Equal(ta.t, http.StatusCreated, response.StatusCode)

	var payload authResponse
	ta.decode(response, &payload)
	require.NotEmpty(ta.t, payload.Token)
	return payload.Token
}

// familyWithCycle registers a caregiver, creates a family and starts cycle 1
// on startDate. It returns the caregiver token and the invite code.
func (ta *testApp) familyWithCycle(startDate string) (string, string) {
	ta.t.Helper()

	token := ta.register("13800000001")
	response := ta.request(http.MethodPost, "/api/family/create", token, map[string]string{"name": "Li family"})
	require.Equal(ta.t, http.StatusCreated, response.StatusCode)
	var family services.FamilyOverview
	ta.decode(response, &family)

	response = ta.request(http.MethodPost, "/api/cycle", token, map[string]any{
		"cycle_no":    1,
		"start_date":  startDate,
		"length_days": 21,
	})
	require.Equal(ta.t, http.StatusCreated, response.StatusCode)
	response.Body.Close()
	return token, family.InviteCode
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	defer response.Body.Close()

	payload := map[string]string{}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
	return payload["error"]
}
