package handler

import (
    "net/http/httptest"
    "net/url"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func browseContext(t *testing.T, params url.Values) echo.Context {
    t.Helper()
    req := httptest.NewRequest("GET", "/v1/events?"+params.Encode(), nil)
    rec := httptest.NewRecorder()
    return echo.New().NewContext(req, rec)
}

func TestParseEventFilterReadsTimeBounds(t *testing.T) {
    from := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
    to := time.Date(2026, 9, 30, 23, 0, 0, 0, time.UTC)

    c := browseContext(t, url.Values{
        "city":     {"Berlin"},
        "category": {"music"},
        "q":        {"jazz"},
        "from":     {from.Format(time.RFC3339)},
        "to":       {to.Format(time.RFC3339)},
        "limit":    {"20"},
        "offset":   {"40"},
    })

    filter, err := parseEventFilter(c)
    require.NoError(t, err)
    assert.Equal(t, "Berlin", filter.City)
    assert.Equal(t, "music", filter.Category)
    assert.Equal(t, "jazz", filter.Query)
    assert.True(t, filter.From.Equal(from))
    assert.True(t, filter.To.Equal(to))
    assert.Equal(t, 20, filter.Limit)
    assert.Equal(t, 40, filter.Offset)
}

func TestParseEventFilterDefaultsToOpenBounds(t *testing.T) {
    filter, err := parseEventFilter(browseContext(t, url.Values{}))
    require.NoError(t, err)
    assert.True(t, filter.From.IsZero())
    assert.True(t, filter.To.IsZero())
}

func TestParseEventFilterRejectsBadTimestamps(t *testing.T) {
    _, err := parseEventFilter(browseContext(t, url.Values{"from": {"yesterday"}}))
    assert.EqualError(t, err, "from must be RFC3339")

    _, err = parseEventFilter(browseContext(t, url.Values{"to": {"2026-09-31"}}))
    assert.EqualError(t, err, "to must be RFC3339")
}
