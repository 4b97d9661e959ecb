package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/primetver/pplan/internal/config"
	"github.com/primetver/pplan/internal/event_bus"
	"github.com/primetver/pplan/internal/utils"
	"github.com/primetver/pplan/pkg/booking"
	"github.com/primetver/pplan/pkg/jira"
	"github.com/primetver/pplan/pkg/report"
	"github.com/primetver/pplan/pkg/staff"
	"github.com/primetver/pplan/pkg/workdays"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	WorkdaysCalculator *workdays.Calculator
	WorkdaysService    *workdays.Service
	WorkdaysHandler    *workdays.Handler

	StaffService *staff.Service
	StaffHandler *staff.Handler

	BookingService *booking.ServiceImpl
	BookingHandler *booking.Handler

	JiraClient    jira.Client
	ReportService *report.Service
	ReportHandler *report.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	settings, err := workdays.NewSettings(cfg.Workdays.StandardHours, cfg.Workdays.Weekend)
	if err != nil {
		return nil, fmt.Errorf("invalid workdays configuration: %w", err)
	}
	workdaysRepo := workdays.NewRepository(db)
	deps.WorkdaysCalculator = workdays.NewCalculator(workdaysRepo, settings)
	deps.WorkdaysService = workdays.NewService(workdaysRepo, deps.WorkdaysCalculator, deps.EventBus)

	var googleSource workdays.HolidaySource
	if cfg.Google.ApiKey != "" {
		source, err := workdays.NewGoogleSource(ctx, cfg.Google.HolidayCalendarId, option.WithAPIKey(cfg.Google.ApiKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Google holiday source: %w", err)
		}
		googleSource = source
	} else {
		log.Info("Google API key is not set, holiday import from Google Calendar is disabled")
	}
	deps.WorkdaysHandler = workdays.NewHandler(deps.WorkdaysService, googleSource, deps.Clock)

	deps.StaffService = staff.NewService(staff.NewRepository(db))
	deps.StaffHandler = staff.NewHandler(deps.StaffService)

	// subscribes to calendar changes, so it has to exist before the first override is stored
	deps.BookingService = booking.NewService(
		booking.NewRepository(db),
		booking.NewExpander(deps.WorkdaysCalculator),
		deps.EventBus,
	)
	deps.BookingHandler = booking.NewHandler(deps.BookingService)

	deps.JiraClient = jira.NewClient(ctx, cfg.Jira)
	deps.ReportService = report.NewService(
		deps.BookingService,
		deps.StaffService,
		deps.JiraClient,
		deps.WorkdaysCalculator,
		cfg.Report.Columns,
		deps.Clock,
	)
	deps.ReportHandler = report.NewHandler(deps.ReportService, deps.Clock)

	return deps, nil
}
