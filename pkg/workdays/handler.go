package workdays

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/primetver/pplan/internal/rest"
	"github.com/primetver/pplan/internal/utils"
	log "github.com/sirupsen/logrus"
)

type OverrideDTO struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Kind    string `json:"kind" validate:"required,oneof=HL SH WK"`
	Label   string `json:"label,omitempty" validate:"max=150"`
	Comment string `json:"comment,omitempty"`
}

type WorkingTimeDTO struct {
	Name        string `json:"name,omitempty"`
	From        string `json:"from"`
	To          string `json:"to"`
	Days        int    `json:"days"`
	Workdays    int    `json:"workdays"`
	NonWorkdays int    `json:"nonWorkdays"`
	Hours       int    `json:"hours"`
}

type ImportResultDTO struct {
	Source  string `json:"source"`
	Created int    `json:"created"`
}

type Handler struct {
	service *Service
	google  HolidaySource
	clock   utils.Clock
}

// NewHandler creates the workdays handler. google may be nil when no Google calendar is configured.
func NewHandler(service *Service, google HolidaySource, clock utils.Clock) *Handler {
	return &Handler{
		service: service,
		google:  google,
		clock:   clock,
	}
}

func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing calendar overrides")
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	overrides, err := h.service.ListOverrides(r.Context(), from, to)
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to list calendar overrides", err.Error())
		return
	}
	dtos := make([]OverrideDTO, 0, len(overrides))
	for _, o := range overrides {
		dtos = append(dtos, overrideToDTO(o))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	log.Trace("Setting calendar override")
	var dto OverrideDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	date, err := rest.ParseDate(dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	stored, err := h.service.SetOverride(r.Context(), Override{
		Date:    date,
		Kind:    DayKind(dto.Kind),
		Label:   dto.Label,
		Comment: dto.Comment,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidDayKind) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid day kind", err.Error())
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to set calendar override", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, overrideToDTO(stored))
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	date, err := rest.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	log.Tracef("Deleting calendar override %s", rest.FormatDate(date))
	if err := h.service.DeleteOverride(r.Context(), date); err != nil {
		if errors.Is(err, ErrOverrideNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Calendar override not found", "")
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to delete calendar override", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetWorkingTime(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	wt, err := h.service.Calculator().Compute(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid range", err.Error())
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to compute working time", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, workingTimeToDTO("", from, to, wt))
}

func (h *Handler) GetStandards(w http.ResponseWriter, r *http.Request) {
	year := utils.Today(h.clock).Year()
	if value := r.URL.Query().Get("year"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > 9999 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", value)
			return
		}
		year = parsed
	}
	rows, err := h.service.Calculator().StandardsReport(r.Context(), year)
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to compute working time standards", err.Error())
		return
	}
	dtos := make([]WorkingTimeDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, workingTimeToDTO(row.Name, row.From, row.To, row.WorkingTime))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// ImportICS imports holidays from the iCalendar document in the request body.
func (h *Handler) ImportICS(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	source, err := NewICSSource(r.Body)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid calendar", err.Error())
		return
	}
	h.importFrom(w, r, source, from, to)
}

func (h *Handler) ImportGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		rest.WriteError(w, http.StatusServiceUnavailable, "Google holiday calendar is not configured", "")
		return
	}
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}
	h.importFrom(w, r, h.google, from, to)
}

func (h *Handler) importFrom(w http.ResponseWriter, r *http.Request, source HolidaySource, from, to time.Time) {
	created, err := h.service.ImportHolidays(r.Context(), source, from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid range", err.Error())
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to import holidays", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, ImportResultDTO{Source: source.Name(), Created: created})
}

// rangeParams reads the from and to query parameters, defaulting to the current year.
func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	today := utils.Today(h.clock)
	from := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if value := r.URL.Query().Get("from"); value != "" {
		if from, err = rest.ParseDate(value); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'from' date", err.Error())
			return time.Time{}, time.Time{}, false
		}
	}
	if value := r.URL.Query().Get("to"); value != "" {
		if to, err = rest.ParseDate(value); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'to' date", err.Error())
			return time.Time{}, time.Time{}, false
		}
	}
	if to.Before(from) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid range", ErrInvalidRange.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func overrideToDTO(o Override) OverrideDTO {
	return OverrideDTO{
		Date:    rest.FormatDate(o.Date),
		Kind:    string(o.Kind),
		Label:   o.Label,
		Comment: o.Comment,
	}
}

func workingTimeToDTO(name string, from, to time.Time, wt WorkingTime) WorkingTimeDTO {
	return WorkingTimeDTO{
		Name:        name,
		From:        rest.FormatDate(from),
		To:          rest.FormatDate(to),
		Days:        wt.Days(),
		Workdays:    wt.Workdays,
		NonWorkdays: wt.NonWorkdays,
		Hours:       wt.Hours,
	}
}
