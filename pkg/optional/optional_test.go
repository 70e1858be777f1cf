package optional

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

func (c *color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "red", "blue":
		*c = color(text)
		return nil
	}
	return fmt.Errorf("unknown color %q", text)
}

func TestParseBlankIsAbsent(t *testing.T) {
	var s Value[string]
	require.NoError(t, s.Parse("   "))
	assert.False(t, s.IsSet())

	var n Value[int64]
	require.NoError(t, n.Parse(""))
	assert.False(t, n.IsSet())
	assert.Nil(t, n.Ptr())
}

func TestParseTypes(t *testing.T) {
	var n Value[int64]
	require.NoError(t, n.Parse("42"))
	got, ok := n.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(42), got)

	var b Value[bool]
	require.NoError(t, b.Parse("on"))
	assert.True(t, b.Or(false))

	var d Value[time.Time]
	require.NoError(t, d.Parse("2024-03-15"))
	assert.Equal(t, "2024-03-15", d.String())

	var money Value[decimal.Decimal]
	require.NoError(t, money.Parse("12.50"))
	assert.True(t, money.Or(decimal.Zero).Equal(decimal.RequireFromString("12.5")))

	var c Value[color]
	require.NoError(t, c.Parse("red"))
	assert.Equal(t, color("red"), c.Or(""))
	assert.Error(t, c.Parse("green"))
}

func TestParseRejectsGarbage(t *testing.T) {
	var n Value[int64]
	assert.Error(t, n.Parse("abc"))

	var d Value[time.Time]
	assert.Error(t, d.Parse("15/03/2024"))
}

type filterForm struct {
	Name   Value[string] `form:"name"`
	AreaID Value[int64]  `form:"area_id"`
	IsVIP  Value[bool]   `form:"is_vip"`
}

func bindQuery(t *testing.T, query string) filterForm {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/sites?"+query, nil)

	var form filterForm
	require.NoError(t, c.ShouldBind(&form))
	return form
}

func TestGinBindingEmptyEqualsOmitted(t *testing.T) {
	empty := bindQuery(t, "name=&area_id=&is_vip=")
	omitted := bindQuery(t, "")
	assert.Equal(t, omitted, empty)
	assert.False(t, empty.AreaID.IsSet())
}

func TestGinBindingFormBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := url.Values{"name": {"North"}, "area_id": {"7"}, "is_vip": {"true"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/api/sites", strings.NewReader(body.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var form filterForm
	require.NoError(t, c.ShouldBind(&form))
	assert.Equal(t, "North", form.Name.Or(""))
	assert.Equal(t, int64(7), form.AreaID.Or(0))
	assert.True(t, form.IsVIP.Or(false))
}
