package jira

import (
	"context"
	"sync"
	"time"

	"github.com/primetver/pplan/internal/utils"
)

type ClientStub struct {
	mu       sync.RWMutex
	worklogs []Worklog
	budgets  map[string]string
	Err      error
}

func NewClientStub() *ClientStub {
	return &ClientStub{budgets: make(map[string]string)}
}

func (c *ClientStub) AddWorklog(w Worklog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.worklogs = append(c.worklogs, w)
}

func (c *ClientStub) SetBudget(issueId, budget string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.budgets[issueId] = budget
}

func (c *ClientStub) Worklogs(ctx context.Context, author string, from, to time.Time) ([]Worklog, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return nil, c.Err
	}
	var result []Worklog
	for _, w := range c.worklogs {
		day := utils.DateOf(w.Started)
		if w.Author == author && !day.Before(from) && !day.After(to) {
			result = append(result, w)
		}
	}
	return result, nil
}

func (c *ClientStub) BudgetName(ctx context.Context, issueId string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return "", c.Err
	}
	return c.budgets[issueId], nil
}

func (c *ClientStub) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.worklogs = nil
	c.budgets = make(map[string]string)
	c.Err = nil
}
