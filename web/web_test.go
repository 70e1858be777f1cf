package web_test

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/handler"
	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/web"
)

func execute(t *testing.T, tmpl *template.Template, name string, data interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func TestTemplatesDefineEveryResourceView(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	resources := []string{
		"departments", "areas", "clients", "sites", "brigades",
		"workers", "technical-personnel", "equipment", "materials", "tasks",
	}
	for _, resource := range resources {
		for _, view := range []string{"index", "table", "details", "show", "form", "form_body"} {
			assert.NotNil(t, tmpl.Lookup(resource+"/"+view), "%s/%s", resource, view)
		}
	}
	for _, name := range []string{"general/notification", "general/error", "general/error_page", "general/options"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestNotificationCarriesRedirect(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	out := execute(t, tmpl, "general/notification", models.Success("Area 'North' created successfully", "/areas/3"))
	assert.Contains(t, out, `data-result="success"`)
	assert.Contains(t, out, `data-redirect="/areas/3"`)
	assert.Contains(t, out, "Area &#39;North&#39; created successfully")
}

func TestCreateFormRendersWithoutItem(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	form := handler.Form[*models.Worker]{Action: "/api/workers", Method: "post", Extra: handler.ProfessionFieldsView{}}
	out := execute(t, tmpl, "workers/form", handler.Page{Title: "New worker", Data: form})
	assert.Contains(t, out, `hx-post="/api/workers"`)
	assert.Contains(t, out, "Choose a profession")
}

func TestSiteFieldsFollowType(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	view := handler.SiteFieldsView{
		Type:   models.SiteTypeRoad,
		Fields: &models.RoadFields{Length: 12.5, Lanes: 4, Surface: "asphalt"},
	}
	out := execute(t, tmpl, "sites/fields", view)
	assert.Contains(t, out, `name="lanes"`)
	assert.Contains(t, out, `value="4"`)
	assert.Contains(t, out, `value="asphalt"`)
	assert.NotContains(t, out, `name="energy_source"`)
}

func TestTaskTableMarksOverdueRows(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []models.TaskListItem{
		{ID: 1, Name: "Foundation", SiteID: 2, SiteName: "Bridge", PeriodStart: start, ExpectedPeriodEnd: start.AddDate(0, 1, 0), Status: models.StatusInProgress, DeadlineExceeded: true},
	}
	table := handler.Table[models.TaskListItem]{
		ListResult: models.NewListResult(items, 1, models.Pagination{}, models.Sort{}),
		BaseURL:    "/api/tasks",
		Query:      url.Values{},
	}
	out := execute(t, tmpl, "tasks/table", table)
	assert.Contains(t, out, `class="overdue"`)
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Page 1 of 1")
}

func TestMaterialUsageHighlightsExcess(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	items := []models.Expenditure{{
		TaskID: 4, TaskName: "Walls", SiteID: 1, SiteName: "Block A", MaterialID: 9, MaterialName: "Brick",
		Units: "pcs", Cost: decimal.NewFromInt(2), ExpectedAmount: decimal.NewFromInt(100),
		ActualAmount: decimal.NewNullDecimal(decimal.NewFromInt(120)), ExcessAmount: decimal.NewFromInt(20),
		TotalCost: decimal.NewFromInt(240),
	}}
	table := handler.Table[models.Expenditure]{
		ListResult: models.NewListResult(items, 1, models.Pagination{}, models.Sort{}),
		BaseURL:    "/api/materials/9/usage",
		Query:      url.Values{},
	}
	out := execute(t, tmpl, "materials/usage", table)
	assert.Contains(t, out, `class="excess"`)
	assert.Contains(t, out, "240.00")
}

func TestStaticAssets(t *testing.T) {
	for _, name := range []string{"app.js", "app.css"} {
		_, err := fs.Stat(web.Static(), name)
		assert.NoError(t, err, name)
	}
}
