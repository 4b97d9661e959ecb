package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/primetver/pplan/internal/config"
	"github.com/primetver/pplan/internal/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	pageSize      = 100
	startedLayout = "2006-01-02T15:04:05.000-0700"
	jqlDateLayout = "2006-01-02"
)

type ClientImpl struct {
	baseUrl     string
	budgetField string
	httpClient  *http.Client

	mu      sync.Mutex
	budgets map[string]string
}

// NewClient returns a Jira REST client authenticated with the configured personal access token,
// or an unconfigured client failing with ErrNotConfigured when no base URL is set.
func NewClient(ctx context.Context, cfg config.Jira) Client {
	if cfg.BaseUrl == "" {
		log.Info("Jira base URL is not set, worklog reports are disabled")
		return unconfiguredClient{}
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	return &ClientImpl{
		baseUrl:     strings.TrimRight(cfg.BaseUrl, "/"),
		budgetField: cfg.BudgetField,
		httpClient:  oauth2.NewClient(ctx, tokenSource),
		budgets:     make(map[string]string),
	}
}

type searchResponse struct {
	StartAt    int `json:"startAt"`
	MaxResults int `json:"maxResults"`
	Total      int `json:"total"`
	Issues     []struct {
		Id     string                     `json:"id"`
		Fields map[string]json.RawMessage `json:"fields"`
	} `json:"issues"`
}

type worklogResponse struct {
	StartAt    int `json:"startAt"`
	MaxResults int `json:"maxResults"`
	Total      int `json:"total"`
	Worklogs   []struct {
		Id     string `json:"id"`
		Author struct {
			Name string `json:"name"`
			Key  string `json:"key"`
		} `json:"author"`
		Started          string `json:"started"`
		TimeSpentSeconds int    `json:"timeSpentSeconds"`
	} `json:"worklogs"`
}

func (c *ClientImpl) Worklogs(ctx context.Context, author string, from, to time.Time) ([]Worklog, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("worklog range %s..%s is reversed", from.Format(jqlDateLayout), to.Format(jqlDateLayout))
	}
	issueIds, err := c.searchIssues(ctx, author, from, to)
	if err != nil {
		return nil, err
	}
	log.Debugf("Found %d issues with worklogs of %s", len(issueIds), author)

	from, to = utils.DateOf(from), utils.DateOf(to)
	var result []Worklog
	for _, issueId := range issueIds {
		worklogs, err := c.issueWorklogs(ctx, issueId)
		if err != nil {
			return nil, err
		}
		for _, w := range worklogs {
			day := utils.DateOf(w.Started)
			if w.Author != author || day.Before(from) || day.After(to) {
				continue
			}
			result = append(result, w)
		}
	}
	return result, nil
}

// jqlEscaper escapes a value placed inside a double-quoted JQL string.
var jqlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// searchIssues returns the ids of the issues author logged work on within the range, caching their budgets.
func (c *ClientImpl) searchIssues(ctx context.Context, author string, from, to time.Time) ([]string, error) {
	jql := fmt.Sprintf(`worklogAuthor = "%s" AND worklogDate >= "%s" AND worklogDate <= "%s"`,
		jqlEscaper.Replace(author), from.Format(jqlDateLayout), to.Format(jqlDateLayout))

	var ids []string
	for startAt := 0; ; {
		query := url.Values{}
		query.Set("jql", jql)
		query.Set("fields", c.budgetField)
		query.Set("startAt", strconv.Itoa(startAt))
		query.Set("maxResults", strconv.Itoa(pageSize))

		var page searchResponse
		if err := c.get(ctx, "/rest/api/2/search?"+query.Encode(), &page); err != nil {
			return nil, err
		}
		for _, issue := range page.Issues {
			ids = append(ids, issue.Id)
			c.cacheBudget(issue.Id, budgetValue(issue.Fields[c.budgetField]))
		}
		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			return ids, nil
		}
	}
}

func (c *ClientImpl) issueWorklogs(ctx context.Context, issueId string) ([]Worklog, error) {
	var result []Worklog
	for startAt := 0; ; {
		path := fmt.Sprintf("/rest/api/2/issue/%s/worklog?startAt=%d&maxResults=%d", url.PathEscape(issueId), startAt, pageSize)
		var page worklogResponse
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}
		for _, w := range page.Worklogs {
			started, err := time.Parse(startedLayout, w.Started)
			if err != nil {
				err := fmt.Errorf("invalid start time %q of worklog %s: %w", w.Started, w.Id, err)
				log.Error(err)
				return nil, err
			}
			author := w.Author.Name
			if author == "" {
				author = w.Author.Key
			}
			result = append(result, Worklog{
				Id:      w.Id,
				IssueId: issueId,
				Author:  author,
				Started: started,
				Seconds: w.TimeSpentSeconds,
			})
		}
		startAt += len(page.Worklogs)
		if len(page.Worklogs) == 0 || startAt >= page.Total {
			return result, nil
		}
	}
}

func (c *ClientImpl) BudgetName(ctx context.Context, issueId string) (string, error) {
	c.mu.Lock()
	budget, ok := c.budgets[issueId]
	c.mu.Unlock()
	if ok {
		return budget, nil
	}

	var issue struct {
		Fields map[string]json.RawMessage `json:"fields"`
	}
	path := fmt.Sprintf("/rest/api/2/issue/%s?fields=%s", url.PathEscape(issueId), url.QueryEscape(c.budgetField))
	if err := c.get(ctx, path, &issue); err != nil {
		return "", err
	}
	budget = budgetValue(issue.Fields[c.budgetField])
	c.cacheBudget(issueId, budget)
	return budget, nil
}

func (c *ClientImpl) cacheBudget(issueId, budget string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.budgets[issueId] = budget
}

// budgetValue reads a select option ({"value": ...}) or a plain text custom field.
func budgetValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var option struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &option); err == nil {
		return option.Value
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	log.Warnf("Unsupported budget field value: %s", string(raw))
	return ""
}

func (c *ClientImpl) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+path, nil)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("jira API returned non-OK status %d for %s", resp.StatusCode, req.URL.Path)
		log.Error(err)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		log.Errorf("Failed to decode response: %v", err)
		return err
	}
	return nil
}

type unconfiguredClient struct{}

func (unconfiguredClient) Worklogs(context.Context, string, time.Time, time.Time) ([]Worklog, error) {
	return nil, ErrNotConfigured
}

func (unconfiguredClient) BudgetName(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
