package report

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/primetver/pplan/internal/rest"
	"github.com/primetver/pplan/internal/utils"
	"github.com/primetver/pplan/pkg/booking"
	"github.com/primetver/pplan/pkg/jira"
	"github.com/primetver/pplan/pkg/staff"
	log "github.com/sirupsen/logrus"
)

type MeasuresDTO struct {
	Days   int     `json:"days"`
	Load   float64 `json:"load"`
	Volume float64 `json:"volume"`
	Hours  float64 `json:"hours"`
	Cost   string  `json:"cost"`
}

type RowDTO struct {
	Id         int           `json:"id,omitempty"`
	Name       string        `json:"name"`
	Unassigned bool          `json:"unassigned,omitempty"`
	Values     []MeasuresDTO `json:"values"`
	Total      MeasuresDTO   `json:"total"`
}

type ReportDTO struct {
	Columns []string      `json:"columns"`
	Rows    []RowDTO      `json:"rows"`
	Totals  []MeasuresDTO `json:"totals,omitempty"`
}

type EmployeeReportDTO struct {
	EmployeeId int    `json:"employeeId"`
	Name       string `json:"name"`
	ReportDTO
}

type Handler struct {
	service *Service
	clock   utils.Clock
}

func NewHandler(service *Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// Monthly serves /api/report/monthly?year=&status=
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseOptions(w, r)
	if !ok {
		return
	}
	report, err := h.service.Monthly(r.Context(), opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, reportToDTO(report))
}

// Projects serves /api/report/projects?month=2024-01&cost=true&status=
func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseOptions(w, r)
	if !ok {
		return
	}
	month := utils.MonthOf(h.clock.Now())
	if value := r.URL.Query().Get("month"); value != "" {
		parsed, err := rest.ParseMonth(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month", "month must be in YYYY-MM format")
			return
		}
		month = parsed
	}
	withCost, _ := strconv.ParseBool(r.URL.Query().Get("cost"))

	report, err := h.service.Projects(r.Context(), month, opts.Statuses, withCost)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, reportToDTO(report))
}

// Employee serves /api/report/employee/{id}?year=&status=
func (h *Handler) Employee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid employee id", err.Error())
		return
	}
	opts, ok := parseOptions(w, r)
	if !ok {
		return
	}
	report, err := h.service.Employee(r.Context(), id, opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, EmployeeReportDTO{
		EmployeeId: report.Employee.Id,
		Name:       report.Employee.FullName(),
		ReportDTO:  reportToDTO(report.Report),
	})
}

// Worklog serves /api/report/worklog?author=&year=
func (h *Handler) Worklog(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("author")
	if author == "" {
		rest.WriteError(w, http.StatusBadRequest, "Missing author", "author query parameter is required")
		return
	}
	opts, ok := parseOptions(w, r)
	if !ok {
		return
	}
	report, err := h.service.Worklog(r.Context(), author, opts.Year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, reportToDTO(report))
}

func parseOptions(w http.ResponseWriter, r *http.Request) (Options, bool) {
	var opts Options
	query := r.URL.Query()
	if value := query.Get("year"); value != "" {
		year, err := strconv.Atoi(value)
		if err != nil || year < 1900 || year > 9999 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", value)
			return Options{}, false
		}
		opts.Year = year
	}
	for _, value := range query["status"] {
		status := booking.Status(value)
		if !status.Valid() {
			rest.WriteError(w, http.StatusBadRequest, "Invalid status", value)
			return Options{}, false
		}
		opts.Statuses = append(opts.Statuses, status)
	}
	return opts, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, staff.ErrEmployeeNotFound):
		rest.WriteError(w, http.StatusNotFound, "Employee not found", "")
	case errors.Is(err, jira.ErrNotConfigured):
		rest.WriteError(w, http.StatusServiceUnavailable, "Jira integration is not configured", "")
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, booking.ErrInvalidRange):
		rest.WriteError(w, http.StatusBadRequest, "Invalid report query", err.Error())
	default:
		log.Errorf("Failed to build report: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func reportToDTO(report Report) ReportDTO {
	dto := ReportDTO{
		Columns: make([]string, 0, len(report.Periods)),
		Rows:    make([]RowDTO, 0, len(report.Rows)),
	}
	for _, p := range report.Periods {
		dto.Columns = append(dto.Columns, periodLabel(p))
	}
	for _, row := range report.Rows {
		dto.Rows = append(dto.Rows, RowDTO{
			Id:         row.Key.Id,
			Name:       row.Key.Name,
			Unassigned: row.Key.IsUnassigned(),
			Values:     measuresToDTOs(row.Values),
			Total:      measuresToDTO(row.Total),
		})
	}
	if report.Totals != nil {
		dto.Totals = measuresToDTOs(report.Totals)
	}
	return dto
}

func periodLabel(p Period) string {
	if p.Month.IsZero() {
		return p.Project.Name
	}
	return p.Month.Format(rest.MonthLayout)
}

func measuresToDTOs(values []Measures) []MeasuresDTO {
	dtos := make([]MeasuresDTO, 0, len(values))
	for _, m := range values {
		dtos = append(dtos, measuresToDTO(m))
	}
	return dtos
}

func measuresToDTO(m Measures) MeasuresDTO {
	return MeasuresDTO{
		Days:   m.Days,
		Load:   m.Load,
		Volume: m.Volume,
		Hours:  m.Hours,
		Cost:   m.Cost.StringFixed(2),
	}
}
