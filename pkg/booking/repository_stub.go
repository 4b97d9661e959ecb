package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrStubReplaceFailed = errors.New("monthly records could not be stored")

type RepositoryStub struct {
	mu          sync.RWMutex
	assignments map[int]Assignment
	records     map[int][]MonthlyRecord
	nextId      int
	// FailReplaceFor makes ReplaceMonthlyRecords fail for the given assignment id.
	FailReplaceFor int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		assignments: make(map[int]Assignment),
		records:     make(map[int][]MonthlyRecord),
		nextId:      1,
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	assignments := make(map[int]Assignment, len(r.assignments))
	for k, v := range r.assignments {
		assignments[k] = v
	}
	records := make(map[int][]MonthlyRecord, len(r.records))
	for k, v := range r.records {
		records[k] = append([]MonthlyRecord(nil), v...)
	}
	nextId := r.nextId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.assignments = assignments
		r.records = records
		r.nextId = nextId
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) StoreAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.Id == 0 {
		a.Id = r.nextId
		r.nextId++
	} else if _, ok := r.assignments[a.Id]; !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	r.assignments[a.Id] = a
	return a, nil
}

func (r *RepositoryStub) GetAssignment(ctx context.Context, id int) (Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[id]
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}

func (r *RepositoryStub) ListAssignments(ctx context.Context, filter Filter) ([]Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Assignment, 0)
	for _, a := range r.assignments {
		if filter.EmployeeId != 0 && a.EmployeeId != filter.EmployeeId {
			continue
		}
		if filter.ProjectId != 0 && a.ProjectId != filter.ProjectId {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && a.FinishDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && a.StartDate.After(filter.To) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].Id < result[j].Id
	})
	return result, nil
}

func (r *RepositoryStub) DeleteAssignment(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[id]; !ok {
		return ErrAssignmentNotFound
	}
	delete(r.assignments, id)
	delete(r.records, id)
	return nil
}

func (r *RepositoryStub) ReplaceMonthlyRecords(ctx context.Context, assignmentId int, records []MonthlyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, assignmentId)
	if r.FailReplaceFor != 0 && r.FailReplaceFor == assignmentId {
		return ErrStubReplaceFailed
	}
	stored := make([]MonthlyRecord, 0, len(records))
	for _, rec := range records {
		rec.AssignmentId = assignmentId
		stored = append(stored, rec)
	}
	r.records[assignmentId] = stored
	return nil
}

func (r *RepositoryStub) GetMonthlyRecords(ctx context.Context, assignmentId int) ([]MonthlyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MonthlyRecord{}, r.records[assignmentId]...), nil
}

func (r *RepositoryStub) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Booking, 0)
	for id, records := range r.records {
		a := r.assignments[id]
		if filter.EmployeeId != 0 && a.EmployeeId != filter.EmployeeId {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, a.Status) {
			continue
		}
		for _, rec := range records {
			if rec.Month.Before(filter.From) || rec.Month.After(filter.To) {
				continue
			}
			result = append(result, Booking{MonthlyRecord: rec, EmployeeId: a.EmployeeId, ProjectId: a.ProjectId, Status: a.Status})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Month.Equal(result[j].Month) {
			return result[i].Month.Before(result[j].Month)
		}
		if result[i].EmployeeId != result[j].EmployeeId {
			return result[i].EmployeeId < result[j].EmployeeId
		}
		return result[i].ProjectId < result[j].ProjectId
	})
	return result, nil
}

func (r *RepositoryStub) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = make(map[int]Assignment)
	r.records = make(map[int][]MonthlyRecord)
	r.nextId = 1
	r.FailReplaceFor = 0
}

func containsStatus(statuses []Status, s Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
