package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Workdays calendar
	r.HandleFunc("/api/workdays/override", deps.WorkdaysHandler.ListOverrides).Methods("GET")
	r.HandleFunc("/api/workdays/override", deps.WorkdaysHandler.SetOverride).Methods("PUT")
	r.HandleFunc("/api/workdays/override/{date}", deps.WorkdaysHandler.DeleteOverride).Methods("DELETE")
	r.HandleFunc("/api/workdays/time", deps.WorkdaysHandler.GetWorkingTime).Methods("GET")
	r.HandleFunc("/api/workdays/standards", deps.WorkdaysHandler.GetStandards).Methods("GET")
	r.HandleFunc("/api/workdays/import/ics", deps.WorkdaysHandler.ImportICS).Methods("POST")
	r.HandleFunc("/api/workdays/import/google", deps.WorkdaysHandler.ImportGoogle).Methods("POST")

	// Staff
	r.HandleFunc("/api/employee", deps.StaffHandler.ListEmployees).Methods("GET")
	r.HandleFunc("/api/employee", deps.StaffHandler.CreateEmployee).Methods("POST")
	r.HandleFunc("/api/employee/{id}", deps.StaffHandler.GetEmployee).Methods("GET")
	r.HandleFunc("/api/employee/{id}", deps.StaffHandler.UpdateEmployee).Methods("PUT")
	r.HandleFunc("/api/employee/{id}/salary", deps.StaffHandler.ListSalaries).Methods("GET")
	r.HandleFunc("/api/employee/{id}/salary", deps.StaffHandler.SetSalary).Methods("POST")
	r.HandleFunc("/api/project", deps.StaffHandler.ListProjects).Methods("GET")
	r.HandleFunc("/api/project", deps.StaffHandler.CreateProject).Methods("POST")
	r.HandleFunc("/api/project/{id}", deps.StaffHandler.GetProject).Methods("GET")
	r.HandleFunc("/api/project/{id}", deps.StaffHandler.UpdateProject).Methods("PUT")

	// Assignments and their monthly booking
	r.HandleFunc("/api/assignment", deps.BookingHandler.List).Methods("GET")
	r.HandleFunc("/api/assignment", deps.BookingHandler.Create).Methods("POST")
	r.HandleFunc("/api/assignment/import", deps.BookingHandler.Import).Methods("POST")
	r.HandleFunc("/api/assignment/regenerate", deps.BookingHandler.Regenerate).Methods("POST")
	r.HandleFunc("/api/assignment/summary", deps.BookingHandler.Summary).Methods("GET")
	r.HandleFunc("/api/assignment/{id}", deps.BookingHandler.Get).Methods("GET")
	r.HandleFunc("/api/assignment/{id}", deps.BookingHandler.Update).Methods("PUT")
	r.HandleFunc("/api/assignment/{id}", deps.BookingHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/assignment/{id}/month", deps.BookingHandler.MonthlyRecords).Methods("GET")
	r.HandleFunc("/api/assignment/{id}/regenerate", deps.BookingHandler.Regenerate).Methods("POST")

	// Reports
	r.HandleFunc("/api/report/monthly", deps.ReportHandler.Monthly).Methods("GET")
	r.HandleFunc("/api/report/projects", deps.ReportHandler.Projects).Methods("GET")
	r.HandleFunc("/api/report/employee/{id}", deps.ReportHandler.Employee).Methods("GET")
	r.HandleFunc("/api/report/worklog", deps.ReportHandler.Worklog).Methods("GET")
}
