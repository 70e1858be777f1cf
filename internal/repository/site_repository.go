package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

// siteStatus derives a site's status from its tasks.
const siteStatus = `CASE
        WHEN NOT EXISTS (SELECT 1 FROM task t WHERE t.site_id = s.id) THEN 'planned'
        WHEN EXISTS (SELECT 1 FROM task t WHERE t.site_id = s.id AND t.actual_period_end IS NULL) THEN 'in_progress'
        ELSE 'completed'
    END`

// SiteRepository manages persistence for sites and their type-specific rows.
type SiteRepository struct {
	db *sqlx.DB
}

// NewSiteRepository constructs a SiteRepository.
func NewSiteRepository(db *sqlx.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

func siteListQuery(filter models.SiteFilter) listQuery {
	q := listQuery{
		name: "sites",
		columns: []string{
			"s.id", "s.name", "s.type", "s.area_id", "a.name AS area_name",
			"a.department_id", "d.name AS department_name",
			"s.client_id", "c.name AS client_name",
			siteStatus + " AS status",
		},
		from: "site s",
		joins: []string{
			"JOIN area a ON a.id = s.area_id",
			"JOIN department d ON d.id = a.department_id",
			"JOIN client c ON c.id = s.client_id",
		},
		sorts: map[string]string{
			"name":            "s.name",
			"type":            "s.type",
			"area_name":       "a.name",
			"department_name": "d.name",
			"client_name":     "c.name",
			"status":          "status",
		},
		key: "s.id",
	}
	q.filter(contains("s.name", filter.Name))
	q.filter(eq("s.area_id", filter.AreaID))
	q.filter(eq("a.department_id", filter.DepartmentID))
	q.filter(eq("s.client_id", filter.ClientID))
	q.filter(eq("s.type", filter.Type))
	if status, ok := filter.Status.Get(); ok {
		q.filter(squirrel.Expr("("+siteStatus+") = ?", status))
	}
	return q
}

// List returns sites matching the filter.
func (r *SiteRepository) List(ctx context.Context, filter models.SiteFilter, params models.ListParams) ([]models.SiteListItem, int, error) {
	return runList[models.SiteListItem](ctx, r.db, siteListQuery(filter), params)
}

// FindByID fetches a site together with its type-specific fields.
func (r *SiteRepository) FindByID(ctx context.Context, id int64) (*models.Site, error) {
	query := `SELECT s.id, s.name, s.type, s.area_id, a.name AS area_name, a.department_id, d.name AS department_name,
        s.client_id, c.name AS client_name, s.location, s.risk_level, s.description,
        ` + siteStatus + ` AS status,
        (SELECT COUNT(*) FROM task t WHERE t.site_id = s.id) AS task_count
        FROM site s
        JOIN area a ON a.id = s.area_id
        JOIN department d ON d.id = a.department_id
        JOIN client c ON c.id = s.client_id
        WHERE s.id = $1`
	var site models.Site
	if err := r.db.GetContext(ctx, &site, query, id); err != nil {
		return nil, err
	}
	fields, err := models.NewSiteFields(site.Type)
	if err != nil {
		return nil, err
	}
	if err := loadSatellite(ctx, r.db, id, fields); err != nil {
		return nil, err
	}
	site.Fields = fields
	return &site, nil
}

func siteValues(site *models.Site) map[string]any {
	return map[string]any{
		"name":        site.Name,
		"type":        site.Fields.SiteType(),
		"area_id":     site.AreaID,
		"client_id":   site.ClientID,
		"location":    site.Location,
		"risk_level":  site.RiskLevel,
		"description": site.Description,
	}
}

// Create inserts the site and its type-specific row in one transaction.
func (r *SiteRepository) Create(ctx context.Context, site *models.Site) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin site create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id, err := insertRow(ctx, tx, "site", siteValues(site))
	if err != nil {
		return err
	}
	if err = insertSatellite(ctx, tx, id, site.Fields); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit site create: %w", err)
	}
	site.ID = id
	site.Type = site.Fields.SiteType()
	return nil
}

// Update rewrites the site. When the type changed the old type-specific row
// is replaced by one for the new type.
func (r *SiteRepository) Update(ctx context.Context, site *models.Site) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin site update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.SiteType
	if err = tx.GetContext(ctx, &current, `SELECT type FROM site WHERE id = $1 FOR UPDATE`, site.ID); err != nil {
		return fmt.Errorf("lock site: %w", err)
	}
	previous, err := models.NewSiteFields(current)
	if err != nil {
		return err
	}
	if err = updateRow(ctx, tx, "site", site.ID, siteValues(site)); err != nil {
		return err
	}
	if err = replaceSatellite(ctx, tx, site.ID, previous.Table(), site.Fields); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit site update: %w", err)
	}
	site.Type = site.Fields.SiteType()
	return nil
}

// Delete removes a site without tasks or equipment allocations.
func (r *SiteRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin site delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.SiteType
	if err = tx.GetContext(ctx, &current, `SELECT type FROM site WHERE id = $1 FOR UPDATE`, id); err != nil {
		return fmt.Errorf("lock site: %w", err)
	}
	tasks, err := count(ctx, tx, `SELECT COUNT(*) FROM task WHERE site_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count site tasks: %w", err)
	}
	if tasks > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete site: it has %d tasks", tasks))
	}
	allocations, err := count(ctx, tx, `SELECT COUNT(*) FROM equipment_allocation WHERE site_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count site allocations: %w", err)
	}
	if allocations > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete site: it has %d equipment allocations", allocations))
	}
	fields, err := models.NewSiteFields(current)
	if err != nil {
		return err
	}
	if err = deleteSatellite(ctx, tx, fields.Table(), id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM site WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit site delete: %w", err)
	}
	return nil
}

// Materials aggregates expenditures over all tasks of the site.
func (r *SiteRepository) Materials(ctx context.Context, siteID int64, p models.Pagination) ([]models.SiteMaterial, int, error) {
	p = p.Normalize()
	query := fmt.Sprintf(`SELECT m.id, m.name, m.units, m.cost,
        SUM(e.expected_amount) AS expected_amount,
        SUM(e.actual_amount) AS actual_amount,
        SUM(COALESCE(e.actual_amount, e.expected_amount) * m.cost) AS total_cost
        FROM expenditure e
        JOIN task t ON t.id = e.task_id
        JOIN material m ON m.id = e.material_id
        WHERE t.site_id = $1
        GROUP BY m.id, m.name, m.units, m.cost
        ORDER BY m.name ASC, m.id ASC LIMIT %d OFFSET %d`, p.Limit(), p.Offset())
	var materials []models.SiteMaterial
	if err := r.db.SelectContext(ctx, &materials, query, siteID); err != nil {
		return nil, 0, fmt.Errorf("list site materials: %w", err)
	}
	total, err := count(ctx, r.db, `SELECT COUNT(DISTINCT e.material_id) FROM expenditure e JOIN task t ON t.id = e.task_id WHERE t.site_id = $1`, siteID)
	if err != nil {
		return nil, 0, fmt.Errorf("count site materials: %w", err)
	}
	return materials, total, nil
}

const siteReportColumns = `SELECT t.id AS task_id, t.name AS task_name, t.period_start, t.expected_period_end, t.actual_period_end,
        GREATEST(0, COALESCE(t.actual_period_end, CURRENT_DATE) - t.expected_period_end) AS delay_days
        FROM task t WHERE t.site_id = $1`

// Reports lists the site's tasks with their delay in days.
func (r *SiteRepository) Reports(ctx context.Context, siteID int64, p models.Pagination) ([]models.SiteReport, int, error) {
	p = p.Normalize()
	query := fmt.Sprintf("%s ORDER BY t.period_start ASC, t.id ASC LIMIT %d OFFSET %d", siteReportColumns, p.Limit(), p.Offset())
	var reports []models.SiteReport
	if err := r.db.SelectContext(ctx, &reports, query, siteID); err != nil {
		return nil, 0, fmt.Errorf("list site reports: %w", err)
	}
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM task t WHERE t.site_id = $1`, siteID)
	if err != nil {
		return nil, 0, fmt.Errorf("count site reports: %w", err)
	}
	return reports, total, nil
}

// AllReports returns every report row of the site, for export.
func (r *SiteRepository) AllReports(ctx context.Context, siteID int64) ([]models.SiteReport, error) {
	var reports []models.SiteReport
	if err := r.db.SelectContext(ctx, &reports, siteReportColumns+" ORDER BY t.period_start ASC, t.id ASC", siteID); err != nil {
		return nil, fmt.Errorf("export site reports: %w", err)
	}
	return reports, nil
}
