package jira

import (
	"context"
	"errors"
	"time"
)

var ErrNotConfigured = errors.New("jira integration is not configured")

// Worklog is one time entry an author logged against an issue.
type Worklog struct {
	Id      string
	IssueId string
	Author  string
	Started time.Time
	Seconds int
}

// Hours returns the logged time in hours.
func (w Worklog) Hours() float64 {
	return float64(w.Seconds) / 3600
}

type Client interface {
	// Worklogs returns the entries of author started between from and to, both dates inclusive.
	Worklogs(ctx context.Context, author string, from, to time.Time) ([]Worklog, error)
	// BudgetName returns the budget of the issue or an empty string when the issue has none.
	BudgetName(ctx context.Context, issueId string) (string, error)
}
