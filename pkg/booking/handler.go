package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/primetver/pplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type AssignmentDTO struct {
	Id          int     `json:"id"`
	EmployeeId  int     `json:"employeeId" validate:"required,gt=0"`
	ProjectId   int     `json:"projectId" validate:"required,gt=0"`
	StartDate   string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	FinishDate  string  `json:"finishDate" validate:"required,datetime=2006-01-02"`
	LoadPercent float64 `json:"load" validate:"gte=0,lte=100"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=DR PL FA"`
}

type ImportDTO struct {
	Assignments []AssignmentDTO `json:"assignments" validate:"required,min=1,dive"`
}

type MonthlyRecordDTO struct {
	Month         string  `json:"month"`
	DaysEngaged   int     `json:"days"`
	EffectiveLoad float64 `json:"load"`
	Volume        float64 `json:"volume"`
}

type SummaryDTO struct {
	EmployeeId int     `json:"employeeId"`
	ProjectId  int     `json:"projectId"`
	StartDate  *string `json:"startDate,omitempty"`
	FinishDate *string `json:"finishDate,omitempty"`
	Workdays   int     `json:"workdays"`
	Volume     float64 `json:"volume"`
	Percent    float64 `json:"percent"`
}

type RegenerateResultDTO struct {
	Regenerated int `json:"regenerated"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing assignments")
	query := r.URL.Query()
	var filter Filter
	var err error
	if filter.EmployeeId, err = optionalInt(query.Get("employeeId")); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid employeeId", err.Error())
		return
	}
	if filter.ProjectId, err = optionalInt(query.Get("projectId")); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid projectId", err.Error())
		return
	}
	filter.Status = Status(query.Get("status"))
	if value := query.Get("from"); value != "" {
		if filter.From, err = rest.ParseDate(value); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'from' date", err.Error())
			return
		}
	}
	if value := query.Get("to"); value != "" {
		if filter.To, err = rest.ParseDate(value); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid 'to' date", err.Error())
			return
		}
	}

	assignments, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		dtos = append(dtos, assignmentToDTO(a))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, assignmentToDTO(a))
}

// Create stores a new assignment. The skipDerivation query parameter stores it without monthly records.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Trace("Creating assignment")
	var dto AssignmentDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	a, err := dtoToAssignment(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	a.Id = 0
	saved, err := h.service.Save(r.Context(), a, saveOptions(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, assignmentToDTO(saved))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var dto AssignmentDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	if dto.Id != 0 && dto.Id != id {
		rest.WriteError(w, http.StatusBadRequest, "Invalid assignment id in request body", "")
		return
	}
	a, err := dtoToAssignment(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	a.Id = id
	saved, err := h.service.Save(r.Context(), a, saveOptions(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, assignmentToDTO(saved))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MonthlyRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	records, err := h.service.MonthlyRecords(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]MonthlyRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, MonthlyRecordDTO{
			Month:         rec.Month.Format(rest.MonthLayout),
			DaysEngaged:   rec.DaysEngaged,
			EffectiveLoad: rec.EffectiveLoad,
			Volume:        rec.Volume,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var dto ImportDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	assignments := make([]Assignment, 0, len(dto.Assignments))
	for _, item := range dto.Assignments {
		a, err := dtoToAssignment(item)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
			return
		}
		a.Id = 0
		assignments = append(assignments, a)
	}
	log.Debugf("Importing %d assignments", len(assignments))
	stored, err := h.service.Import(r.Context(), assignments)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]AssignmentDTO, 0, len(stored))
	for _, a := range stored {
		dtos = append(dtos, assignmentToDTO(a))
	}
	rest.WriteJSON(w, http.StatusCreated, dtos)
}

// Regenerate rebuilds the monthly records of one assignment when an id is in the path, of all otherwise.
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if _, hasId := mux.Vars(r)["id"]; hasId {
		id, ok := pathId(w, r)
		if !ok {
			return
		}
		if err := h.service.Regenerate(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		rest.WriteJSON(w, http.StatusOK, RegenerateResultDTO{Regenerated: 1})
		return
	}
	count, err := h.service.RegenerateAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, RegenerateResultDTO{Regenerated: count})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	employeeId, err := strconv.Atoi(query.Get("employeeId"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid employeeId", err.Error())
		return
	}
	projectId, err := strconv.Atoi(query.Get("projectId"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid projectId", err.Error())
		return
	}
	status := Status(query.Get("status"))
	if status == "" {
		status = Planned
	}
	summary, err := h.service.MemberSummary(r.Context(), employeeId, projectId, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dto := SummaryDTO{
		EmployeeId: summary.EmployeeId,
		ProjectId:  summary.ProjectId,
		Workdays:   summary.Workdays,
		Volume:     summary.Volume,
		Percent:    summary.Percent,
	}
	if !summary.StartDate.IsZero() {
		dto.StartDate = rest.FormatOptionalDate(&summary.StartDate)
		dto.FinishDate = rest.FormatOptionalDate(&summary.FinishDate)
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func saveOptions(r *http.Request) SaveOptions {
	skip, _ := strconv.ParseBool(r.URL.Query().Get("skipDerivation"))
	return SaveOptions{SkipDerivation: skip}
}

func pathId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid assignment id", err.Error())
		return 0, false
	}
	return id, true
}

func optionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAssignmentNotFound):
		rest.WriteError(w, http.StatusNotFound, "Assignment not found", "")
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrInvalidLoad), errors.Is(err, ErrInvalidStatus):
		rest.WriteError(w, http.StatusBadRequest, "Invalid assignment", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func assignmentToDTO(a Assignment) AssignmentDTO {
	return AssignmentDTO{
		Id:          a.Id,
		EmployeeId:  a.EmployeeId,
		ProjectId:   a.ProjectId,
		StartDate:   rest.FormatDate(a.StartDate),
		FinishDate:  rest.FormatDate(a.FinishDate),
		LoadPercent: a.LoadPercent,
		Status:      string(a.Status),
	}
}

func dtoToAssignment(dto AssignmentDTO) (Assignment, error) {
	start, err := rest.ParseDate(dto.StartDate)
	if err != nil {
		return Assignment{}, err
	}
	finish, err := rest.ParseDate(dto.FinishDate)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{
		Id:          dto.Id,
		EmployeeId:  dto.EmployeeId,
		ProjectId:   dto.ProjectId,
		StartDate:   start,
		FinishDate:  finish,
		LoadPercent: dto.LoadPercent,
		Status:      Status(dto.Status),
	}, nil
}
