package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Workdays.StandardHours)
	assert.Equal(t, []string{"saturday", "sunday"}, cfg.Workdays.Weekend)
	assert.Equal(t, 18, cfg.Report.Columns)
	assert.Equal(t, "customfield_10700", cfg.Jira.BudgetField)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := `
db:
  host: db.internal
  port: 6432
workdays:
  standardhours: 7
report:
  columns: 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PPLAN_JIRA_BASEURL", "https://jira.example.com")
	t.Setenv("PPLAN_WORKDAYS_WEEKEND", "friday,saturday")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, 7, cfg.Workdays.StandardHours)
	assert.Equal(t, 12, cfg.Report.Columns)
	assert.Equal(t, "https://jira.example.com", cfg.Jira.BaseUrl)
	assert.Equal(t, []string{"friday", "saturday"}, cfg.Workdays.Weekend)
}
