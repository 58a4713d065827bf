package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoi/poi-directory/internal/apperr"
)

func searchContext(t *testing.T, params url.Values) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pois/search?"+params.Encode(), nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParseSearchQueryFilters(t *testing.T) {
	c := searchContext(t, url.Values{
		"name":        {"  Temple  "},
		"province":    {"Beijing"},
		"category":    {"heritage"},
		"has_image":   {"true"},
		"has_website": {"false"},
		"page":        {"2"},
		"per_page":    {"25"},
	})

	q, err := parseSearchQuery(c)
	require.NoError(t, err)
	assert.Equal(t, "Temple", q.Name)
	assert.Equal(t, "Beijing", q.Province)
	assert.Equal(t, "heritage", q.Category)
	require.NotNil(t, q.HasImage)
	assert.True(t, *q.HasImage)
	require.NotNil(t, q.HasWebsite)
	assert.False(t, *q.HasWebsite)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 25, q.PerPage)
	assert.Nil(t, q.BBox)
	assert.Nil(t, q.Radius)
}

func TestParseSearchQuerySpatial(t *testing.T) {
	c := searchContext(t, url.Values{
		"min_lat": {"39"}, "min_lon": {"116"},
		"max_lat": {"40"}, "max_lon": {"117"},
		"center_lat": {"39.5"}, "center_lon": {"116.5"}, "radius_km": {"5"},
	})

	q, err := parseSearchQuery(c)
	require.NoError(t, err)
	require.NotNil(t, q.BBox)
	assert.Equal(t, 39.0, q.BBox.MinLat)
	assert.Equal(t, 117.0, q.BBox.MaxLon)
	require.NotNil(t, q.Radius)
	assert.Equal(t, 5.0, q.Radius.RadiusKM)
}

func TestParseSearchQueryPartialSpatialIgnored(t *testing.T) {
	// A spatial filter only engages with the full parameter set; partial
	// sets are ignored rather than guessed at.
	c := searchContext(t, url.Values{
		"min_lat": {"39"}, "min_lon": {"116"}, "max_lat": {"40"},
		"center_lat": {"39.5"}, "radius_km": {"5"},
	})

	q, err := parseSearchQuery(c)
	require.NoError(t, err)
	assert.Nil(t, q.BBox)
	assert.Nil(t, q.Radius)
}

func TestParseSearchQueryBadNumber(t *testing.T) {
	c := searchContext(t, url.Values{
		"min_lat": {"north"}, "min_lon": {"116"},
		"max_lat": {"40"}, "max_lon": {"117"},
	})

	_, err := parseSearchQuery(c)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Contains(t, ae.Message, "min_lat")
}

func TestParseSearchQueryBadBool(t *testing.T) {
	c := searchContext(t, url.Values{"has_image": {"maybe"}})

	_, err := parseSearchQuery(c)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Contains(t, ae.Message, "has_image")
}

func TestParseSearchQueryBadPagination(t *testing.T) {
	// Non-numeric paging is rejected like every other numeric parameter,
	// never silently mapped to the defaults.
	for _, name := range []string{"page", "per_page"} {
		c := searchContext(t, url.Values{name: {"lots"}})

		_, err := parseSearchQuery(c)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae, name)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		assert.Contains(t, ae.Message, name)
	}

	// Out-of-range numeric values are still legal input; Normalize clamps
	// them downstream.
	c := searchContext(t, url.Values{"page": {"-2"}, "per_page": {"5000"}})
	q, err := parseSearchQuery(c)
	require.NoError(t, err)
	assert.Equal(t, -2, q.Page)
	assert.Equal(t, 5000, q.PerPage)
}

func TestPOIIDParam(t *testing.T) {
	e := echo.New()
	newCtx := func(raw string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		return c
	}

	id, err := poiIDParam(newCtx("42"))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, err := poiIDParam(newCtx(raw))
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae, "id %q", raw)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	}
}
