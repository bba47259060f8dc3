package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/careline/internal/db"
	"github.com/terraincognita07/careline/internal/i18n"
	"github.com/terraincognita07/careline/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	authTokenTTL      = 30 * 24 * time.Hour
	loginAttemptLimit = 8
	loginWindow       = 15 * time.Minute
	inviteQRSize      = 256
)

type Handler struct {
	secretKey    []byte
	clock        services.Clock
	location     *time.Location
	i18n         *i18n.Manager
	logger       *zap.Logger
	loginLimiter *attemptLimiter

	authService    *services.AuthService
	familyService  *services.FamilyService
	cycleService   *services.CycleService
	dailyService   *services.DailyRecordService
	stoolService   *services.StoolService
	summaryService *services.SummaryService
	messageService *services.MessageService
	exportService  *services.ExportService
}

type authClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

func NewHandler(database *gorm.DB, secret string, clock services.Clock, i18nManager *i18n.Manager, logger *zap.Logger) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if secret == "" {
		return nil, errors.New("secret key is required")
	}
	if clock == nil {
		clock = services.NewFixedZoneClock(services.DefaultTimezoneOffsetHours)
	}
	if i18nManager == nil {
		return nil, errors.New("i18n manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	repos := db.NewRepositories(database)
	cycleService := services.NewCycleService(repos.Cycles, clock)
	dailyService := services.NewDailyRecordService(repos.DailyRecords, cycleService, clock)

	return &Handler{
		secretKey:    []byte(secret),
		clock:        clock,
		location:     clock.Today().Location(),
		i18n:         i18nManager,
		logger:       logger.Named("api"),
		loginLimiter: newAttemptLimiter(loginAttemptLimit, loginWindow),

		authService:    services.NewAuthService(repos.Users),
		familyService:  services.NewFamilyService(repos.Families, clock),
		cycleService:   cycleService,
		dailyService:   dailyService,
		stoolService:   services.NewStoolService(repos.StoolEvents, clock),
		summaryService: services.NewSummaryService(cycleService, dailyService, clock),
		messageService: services.NewMessageService(repos.Messages, clock),
		exportService:  services.NewExportService(cycleService, dailyService, clock),
	}, nil
}
