package workdays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestGoogleSource_Holidays(t *testing.T) {
	// given
	var requestedPath, timeMin string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		timeMin = r.URL.Query().Get("timeMin")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "1", "summary": "International Women's Day", "start": {"date": "2024-03-08"}, "end": {"date": "2024-03-09"}},
				{"id": "2", "summary": "Spring and Labour Day", "start": {"date": "2024-04-30"}, "end": {"date": "2024-05-02"}},
				{"id": "3", "summary": "Timed", "start": {"dateTime": "2024-03-11T10:00:00Z"}, "end": {"dateTime": "2024-03-11T11:00:00Z"}}
			]
		}`))
	}))
	defer server.Close()

	source, err := NewGoogleSource(context.Background(), "holidays",
		option.WithEndpoint(server.URL+"/"),
		option.WithAPIKey("test-key"),
	)
	require.NoError(t, err)

	// when
	holidays, err := source.Holidays(context.Background(), date(2024, 3, 1), date(2024, 4, 30))

	// then
	require.NoError(t, err)
	assert.Equal(t, "/calendars/holidays/events", requestedPath)
	assert.Equal(t, "2024-03-01T00:00:00Z", timeMin)
	assert.Equal(t, []Override{
		{Date: date(2024, 3, 8), Kind: Holiday, Label: "International Women's Day"},
		{Date: date(2024, 4, 30), Kind: Holiday, Label: "Spring and Labour Day"},
	}, holidays)
	assert.Equal(t, "google:holidays", source.Name())
}
