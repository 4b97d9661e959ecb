package workdays

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/primetver/pplan/internal/utils"
)

type RepositoryStub struct {
	mu        sync.RWMutex
	overrides map[time.Time]Override
	// Err, when set, is returned by every read.
	Err error
}

func NewRepositoryStub(overrides ...Override) *RepositoryStub {
	r := &RepositoryStub{overrides: make(map[time.Time]Override)}
	for _, o := range overrides {
		o.Date = utils.DateOf(o.Date)
		r.overrides[o.Date] = o
	}
	return r
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	snapshot := make(map[time.Time]Override, len(r.overrides))
	for k, v := range r.overrides {
		snapshot[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.overrides = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) GetOverride(ctx context.Context, date time.Time) (*Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	o, ok := r.overrides[utils.DateOf(date)]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *RepositoryStub) GetOverrides(ctx context.Context, from, to time.Time) ([]Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	result := make([]Override, 0)
	for date, o := range r.overrides {
		if !date.Before(utils.DateOf(from)) && !date.After(utils.DateOf(to)) {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (r *RepositoryStub) StoreOverride(ctx context.Context, override Override) (Override, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	override.Date = utils.DateOf(override.Date)
	r.overrides[override.Date] = override
	return override, nil
}

func (r *RepositoryStub) StoreOverrideIfAbsent(ctx context.Context, override Override) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	override.Date = utils.DateOf(override.Date)
	if _, exists := r.overrides[override.Date]; exists {
		return false, nil
	}
	r.overrides[override.Date] = override
	return true, nil
}

func (r *RepositoryStub) DeleteOverride(ctx context.Context, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	date = utils.DateOf(date)
	if _, exists := r.overrides[date]; !exists {
		return ErrOverrideNotFound
	}
	delete(r.overrides, date)
	return nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = make(map[time.Time]Override)
	r.Err = nil
}
