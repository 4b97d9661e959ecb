package staff

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/primetver/pplan/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EmployeeDTO struct {
	Id        int     `json:"id"`
	Uid       string  `json:"uid,omitempty"`
	LastName  string  `json:"lastName" validate:"required,max=200"`
	FirstName string  `json:"firstName" validate:"required,max=200"`
	SurName   string  `json:"surName,omitempty" validate:"max=200"`
	FullName  string  `json:"fullName,omitempty"`
	HireDate  string  `json:"hireDate" validate:"required,datetime=2006-01-02"`
	FireDate  *string `json:"fireDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	BusinessK float64 `json:"businessK" validate:"gte=0,lte=1"`
}

type ProjectDTO struct {
	Id         int     `json:"id"`
	ShortName  string  `json:"shortName" validate:"required,max=40"`
	FullName   string  `json:"fullName,omitempty"`
	StartDate  string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	FinishDate *string `json:"finishDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	State      string  `json:"state,omitempty" validate:"omitempty,oneof=IN OP CL CD"`
}

type SalaryDTO struct {
	Id         int    `json:"id"`
	EmployeeId int    `json:"employeeId"`
	Amount     string `json:"amount" validate:"required,numeric"`
	StartDate  string `json:"startDate" validate:"required,datetime=2006-01-02"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing employees")
	employees, err := h.service.ListEmployees(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to list employees", err.Error())
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, employeeToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	employee, err := h.service.GetEmployee(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, employeeToDTO(employee))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	log.Trace("Creating employee")
	var dto EmployeeDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	employee, err := dtoToEmployee(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	created, err := h.service.CreateEmployee(r.Context(), employee)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, employeeToDTO(created))
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var dto EmployeeDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	employee, err := dtoToEmployee(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	employee.Id = id
	updated, err := h.service.UpdateEmployee(r.Context(), employee)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, employeeToDTO(updated))
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing projects")
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to list projects", err.Error())
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, projectToDTO(p))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, projectToDTO(project))
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log.Trace("Creating project")
	var dto ProjectDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	project, err := dtoToProject(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	created, err := h.service.CreateProject(r.Context(), project)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, projectToDTO(created))
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var dto ProjectDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	project, err := dtoToProject(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	project.Id = id
	updated, err := h.service.UpdateProject(r.Context(), project)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, projectToDTO(updated))
}

func (h *Handler) ListSalaries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	salaries, err := h.service.ListSalaries(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]SalaryDTO, 0, len(salaries))
	for _, s := range salaries {
		dtos = append(dtos, salaryToDTO(s))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SetSalary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var dto SalaryDTO
	if !rest.DecodeAndValidate(w, r, &dto) {
		return
	}
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid amount", err.Error())
		return
	}
	startDate, err := rest.ParseDate(dto.StartDate)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	stored, err := h.service.SetSalary(r.Context(), Salary{EmployeeId: id, Amount: amount, StartDate: startDate})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, salaryToDTO(stored))
}

func pathId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid id", err.Error())
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmployeeNotFound):
		rest.WriteError(w, http.StatusNotFound, "Employee not found", "")
	case errors.Is(err, ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, ErrInvalidEmployee), errors.Is(err, ErrInvalidProject), errors.Is(err, ErrInvalidSalary):
		rest.WriteError(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func employeeToDTO(e Employee) EmployeeDTO {
	return EmployeeDTO{
		Id:        e.Id,
		Uid:       e.Uid.String(),
		LastName:  e.LastName,
		FirstName: e.FirstName,
		SurName:   e.SurName,
		FullName:  e.FullName(),
		HireDate:  rest.FormatDate(e.HireDate),
		FireDate:  rest.FormatOptionalDate(e.FireDate),
		BusinessK: e.BusinessK,
	}
}

func dtoToEmployee(dto EmployeeDTO) (Employee, error) {
	hireDate, err := rest.ParseDate(dto.HireDate)
	if err != nil {
		return Employee{}, err
	}
	fireDate, err := rest.ParseOptionalDate(dto.FireDate)
	if err != nil {
		return Employee{}, err
	}
	return Employee{
		Id:        dto.Id,
		LastName:  dto.LastName,
		FirstName: dto.FirstName,
		SurName:   dto.SurName,
		HireDate:  hireDate,
		FireDate:  fireDate,
		BusinessK: dto.BusinessK,
	}, nil
}

func projectToDTO(p Project) ProjectDTO {
	return ProjectDTO{
		Id:         p.Id,
		ShortName:  p.ShortName,
		FullName:   p.FullName,
		StartDate:  rest.FormatDate(p.StartDate),
		FinishDate: rest.FormatOptionalDate(p.FinishDate),
		State:      string(p.State),
	}
}

func dtoToProject(dto ProjectDTO) (Project, error) {
	startDate, err := rest.ParseDate(dto.StartDate)
	if err != nil {
		return Project{}, err
	}
	finishDate, err := rest.ParseOptionalDate(dto.FinishDate)
	if err != nil {
		return Project{}, err
	}
	return Project{
		Id:         dto.Id,
		ShortName:  dto.ShortName,
		FullName:   dto.FullName,
		StartDate:  startDate,
		FinishDate: finishDate,
		State:      ProjectState(dto.State),
	}, nil
}

func salaryToDTO(s Salary) SalaryDTO {
	return SalaryDTO{
		Id:         s.Id,
		EmployeeId: s.EmployeeId,
		Amount:     s.Amount.StringFixed(2),
		StartDate:  rest.FormatDate(s.StartDate),
	}
}
