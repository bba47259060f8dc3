package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/careline/internal/models"
	"go.uber.org/zap"
)

type reminderFamilyStub struct {
	ids []uint
}

func (stub reminderFamilyStub) ListIDsWithActiveCycle() ([]uint, error) {
	return stub.ids, nil
}

type telegramRecorder struct {
	mu       sync.Mutex
	paths    []string
	messages []string
	status   int
}

func (recorder *telegramRecorder) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	recorder.mu.Lock()
	recorder.paths = append(recorder.paths, r.URL.Path)
	recorder.messages = append(recorder.messages, r.PostForm.Get("text"))
	status := recorder.status
	recorder.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func newReminderFixture(t *testing.T, recorder *telegramRecorder) (*ReminderService, *dailyRecordRepositoryStub) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(recorder.handler))
	t.Cleanup(server.Close)

	repo := newDailyRecordRepositoryStub()
	service := NewReminderService(reminderFamilyStub{ids: []uint{1}}, repo, clockAt(2024, time.January, 5), zap.NewNop(), ReminderConfig{
		BotToken: "token",
		ChatID:   "42",
		APIURL:   server.URL,
	})
	service.client.SetRetryCount(0)
	return service, repo
}

func TestReminderServiceDisabledWithoutCredentials(t *testing.T) {
	service := NewReminderService(reminderFamilyStub{}, newDailyRecordRepositoryStub(), clockAt(2024, time.January, 5), nil, ReminderConfig{})
	assert.False(t, service.Enabled())
	assert.Equal(t, DefaultReminderInterval, service.config.Interval)
}

func TestReminderServiceSendsMissingRecordOncePerDay(t *testing.T) {
	recorder := &telegramRecorder{}
	service, _ := newReminderFixture(t, recorder)

	assert.Equal(t, 1, service.RunOnce(context.Background()))
	assert.Equal(t, 0, service.RunOnce(context.Background()))

	require.Len(t, recorder.messages, 1)
	assert.Equal(t, "/bottoken/sendMessage", recorder.paths[0])
	assert.Contains(t, recorder.messages[0], "has not recorded")
	assert.Contains(t, recorder.messages[0], "2024-01-05")
}

func TestReminderServiceFeverAlert(t *testing.T) {
	recorder := &telegramRecorder{}
	service, repo := newReminderFixture(t, recorder)
	repo.put(models.DailyRecord{FamilyID: 1, Date: day(2024, time.January, 5), Fever: true, TempC: floatPtr(38.5)})

	assert.Equal(t, 1, service.RunOnce(context.Background()))
	require.Len(t, recorder.messages, 1)
	assert.True(t, strings.Contains(recorder.messages[0], "38.5°C"))
}

func TestReminderServiceSkipsMildTemperature(t *testing.T) {
	recorder := &telegramRecorder{}
	service, repo := newReminderFixture(t, recorder)
	repo.put(models.DailyRecord{FamilyID: 1, Date: day(2024, time.January, 5), Fever: true, TempC: floatPtr(37.6)})

	assert.Equal(t, 0, service.RunOnce(context.Background()))
	assert.Empty(t, recorder.messages)
}

func TestReminderServiceRetriesAfterFailedSend(t *testing.T) {
	recorder := &telegramRecorder{status: http.StatusInternalServerError}
	service, _ := newReminderFixture(t, recorder)

	assert.Equal(t, 0, service.RunOnce(context.Background()))

	recorder.mu.Lock()
	recorder.status = http.StatusOK
	recorder.mu.Unlock()

	assert.Equal(t, 1, service.RunOnce(context.Background()))
	assert.Len(t, recorder.messages, 2)
}
