package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultTelegramAPIURL    = "https://api.telegram.org"
	DefaultReminderInterval  = time.Hour
	FeverAlertThreshold      = 38.0
	maxTrackedNotifications  = 500
	missingRecordReminderKey = "missing"
	feverAlertKey            = "fever"
)

type ReminderFamilyReader interface {
	ListIDsWithActiveCycle() ([]uint, error)
}

type ReminderConfig struct {
	BotToken string
	ChatID   string
	APIURL   string
	Interval time.Duration
}

// ReminderService pushes Telegram messages about missing records and fevers.
// Each message is sent at most once per family and day.
type ReminderService struct {
	families ReminderFamilyReader
	records  DailyRecordRepository
	clock    Clock
	logger   *zap.Logger
	client   *resty.Client
	config   ReminderConfig
	enabled  bool

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewReminderService(families ReminderFamilyReader, records DailyRecordRepository, clock Clock, logger *zap.Logger, config ReminderConfig) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.APIURL == "" {
		config.APIURL = DefaultTelegramAPIURL
	}
	if config.Interval <= 0 {
		config.Interval = DefaultReminderInterval
	}

	client := resty.New().
		SetBaseURL(config.APIURL).
		SetTimeout(8 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &ReminderService{
		families: families,
		records:  records,
		clock:    clock,
		logger:   logger.Named("reminders"),
		client:   client,
		config:   config,
		enabled:  config.BotToken != "" && config.ChatID != "",
		sent:     make(map[string]time.Time),
	}
}

func (service *ReminderService) Enabled() bool {
	return service.enabled
}

// Start runs a pass immediately and then on every tick until ctx is done.
func (service *ReminderService) Start(ctx context.Context) {
	if !service.enabled {
		service.logger.Info("telegram reminders disabled")
		return
	}

	ticker := time.NewTicker(service.config.Interval)
	go func() {
		defer ticker.Stop()

		service.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				service.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce checks every family with an active cycle and returns the number
// of messages sent.
func (service *ReminderService) RunOnce(ctx context.Context) int {
	familyIDs, err := service.families.ListIDsWithActiveCycle()
	if err != nil {
		service.logger.Error("list families failed", zap.Error(err))
		return 0
	}

	today := service.clock.Today()
	dayStart, dayEnd := DayRange(today, today.Location())
	sent := 0
	for _, familyID := range familyIDs {
		record, found, err := service.records.FindByFamilyAndDayRange(familyID, dayStart, dayEnd)
		if err != nil {
			service.logger.Error("load today's record failed", zap.Uint("family_id", familyID), zap.Error(err))
			continue
		}

		var kind, message string
		switch {
		case !found:
			kind = missingRecordReminderKey
			message = fmt.Sprintf("CareLine: family #%d has not recorded today's symptoms yet (%s).", familyID, FormatDay(today))
		case record.Fever && record.TempC != nil && *record.TempC >= FeverAlertThreshold:
			kind = feverAlertKey
			message = fmt.Sprintf("CareLine alert: family #%d recorded a fever of %s°C today (%s).", familyID, formatDecimal(*record.TempC), FormatDay(today))
		default:
			continue
		}

		key := fmt.Sprintf("%s:%d:%s", kind, familyID, FormatDay(today))
		if !service.shouldSend(key, today) {
			continue
		}
		if err := service.sendTelegram(ctx, message); err != nil {
			service.logger.Warn("send telegram message failed", zap.String("kind", kind), zap.Uint("family_id", familyID), zap.Error(err))
			service.forget(key)
			continue
		}
		sent++
	}
	return sent
}

func (service *ReminderService) shouldSend(key string, today time.Time) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	if sentOn, ok := service.sent[key]; ok && sameDay(sentOn, today) {
		return false
	}

	service.sent[key] = today
	if len(service.sent) > maxTrackedNotifications {
		service.sent = map[string]time.Time{key: today}
	}
	return true
}

func (service *ReminderService) forget(key string) {
	service.mu.Lock()
	defer service.mu.Unlock()
	delete(service.sent, key)
}

func (service *ReminderService) sendTelegram(ctx context.Context, message string) error {
	response, err := service.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": service.config.ChatID,
			"text":    message,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", service.config.BotToken))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if response.IsError() {
		return fmt.Errorf("telegram status %d: %s", response.StatusCode(), truncate(response.String(), 1024))
	}
	return nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
