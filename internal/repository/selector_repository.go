package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
)

// Selector names accepted by SelectorRepository.Options.
const (
	SelectorDepartments        = "departments"
	SelectorAreas              = "areas"
	SelectorClients            = "clients"
	SelectorTechnicalPersonnel = "technical-personnel"
	SelectorWorkers            = "workers"
	SelectorBrigades           = "brigades"
	SelectorSites              = "sites"
	SelectorEquipment          = "equipment"
	SelectorMaterials          = "materials"
	SelectorTasks              = "tasks"
)

type selectorSource struct {
	id     string
	label  string
	hint   string
	from   string
	joins  []string
	search []string
	where  func(models.SelectorFilter) []squirrel.Sqlizer
}

var selectorSources = map[string]selectorSource{
	SelectorDepartments: {
		id: "d.id", label: "d.name", hint: "''",
		from: "department d", search: []string{"d.name"},
	},
	SelectorAreas: {
		id: "a.id", label: "a.name", hint: "d.name",
		from:   "area a",
		joins:  []string{"JOIN department d ON d.id = a.department_id"},
		search: []string{"a.name"},
		where: func(f models.SelectorFilter) []squirrel.Sqlizer {
			return []squirrel.Sqlizer{eq("a.department_id", f.DepartmentID)}
		},
	},
	SelectorClients: {
		id: "c.id", label: "c.name", hint: "c.inn::text",
		from: "client c", search: []string{"c.name"},
	},
	SelectorTechnicalPersonnel: {
		id: "tp.id", label: "e.last_name || ' ' || e.first_name", hint: "tp.qualification::text",
		from:   "technical_personnel tp",
		joins:  []string{"JOIN employee e ON e.id = tp.id", "LEFT JOIN area a ON a.id = tp.area_id"},
		search: []string{"e.first_name", "e.last_name"},
		where: func(f models.SelectorFilter) []squirrel.Sqlizer {
			return []squirrel.Sqlizer{eq("a.department_id", f.DepartmentID), eq("tp.area_id", f.AreaID)}
		},
	},
	SelectorWorkers: {
		id: "w.id", label: "e.last_name || ' ' || e.first_name", hint: "w.profession::text",
		from:   "worker w",
		joins:  []string{"JOIN employee e ON e.id = w.id"},
		search: []string{"e.first_name", "e.last_name"},
		where: func(f models.SelectorFilter) []squirrel.Sqlizer {
			return []squirrel.Sqlizer{when("NOT EXISTS (SELECT 1 FROM assignment asg WHERE asg.worker_id = w.id)", f.Unassigned)}
		},
	},
	SelectorBrigades: {
		id: "b.id", label: "'Brigade #' || b.id", hint: brigadierName,
		from:   "brigade b",
		joins:  []string{"JOIN employee be ON be.id = b.brigadier_id"},
		search: []string{"be.first_name", "be.last_name"},
	},
	SelectorSites: {
		id: "s.id", label: "s.name", hint: "a.name",
		from:   "site s",
		joins:  []string{"JOIN area a ON a.id = s.area_id"},
		search: []string{"s.name"},
		where: func(f models.SelectorFilter) []squirrel.Sqlizer {
			return []squirrel.Sqlizer{eq("a.department_id", f.DepartmentID), eq("s.area_id", f.AreaID)}
		},
	},
	SelectorEquipment: {
		id: "eqp.id", label: "eqp.name", hint: "(eqp.amount - " + allocatedAmount + ")::text || ' available'",
		from: "equipment eqp", search: []string{"eqp.name"},
	},
	SelectorMaterials: {
		id: "m.id", label: "m.name", hint: "m.units",
		from: "material m", search: []string{"m.name"},
	},
	SelectorTasks: {
		id: "t.id", label: "t.name", hint: "s.name",
		from:   "task t",
		joins:  []string{"JOIN site s ON s.id = t.site_id"},
		search: []string{"t.name"},
		where: func(f models.SelectorFilter) []squirrel.Sqlizer {
			return []squirrel.Sqlizer{eq("t.site_id", f.SiteID)}
		},
	},
}

// SelectorRepository lists small id/label sets for dropdowns.
type SelectorRepository struct {
	db *sqlx.DB
}

// NewSelectorRepository constructs a SelectorRepository.
func NewSelectorRepository(db *sqlx.DB) *SelectorRepository {
	return &SelectorRepository{db: db}
}

// HasSelector reports whether name is a known selector.
func HasSelector(name string) bool {
	_, ok := selectorSources[name]
	return ok
}

// Options returns at most limit options of the named selector ordered by label.
func (r *SelectorRepository) Options(ctx context.Context, name string, filter models.SelectorFilter, limit int) ([]models.SelectorOption, error) {
	src, ok := selectorSources[name]
	if !ok {
		return nil, fmt.Errorf("unknown selector %q", name)
	}
	sb := psql.Select(
		src.id+" AS id",
		src.label+" AS label",
		"COALESCE("+src.hint+", '') AS hint",
	).From(src.from)
	for _, join := range src.joins {
		sb = sb.JoinClause(join)
	}
	if text, ok := filter.Name.Get(); ok {
		match := squirrel.Or{}
		for _, col := range src.search {
			match = append(match, squirrel.ILike{col: substring(text)})
		}
		sb = sb.Where(match)
	}
	if src.where != nil {
		for _, pred := range src.where(filter) {
			if pred != nil {
				sb = sb.Where(pred)
			}
		}
	}
	query, args, err := sb.OrderBy("label ASC", src.id+" ASC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s selector: %w", name, err)
	}
	var options []models.SelectorOption
	if err := r.db.SelectContext(ctx, &options, query, args...); err != nil {
		return nil, fmt.Errorf("select %s options: %w", name, err)
	}
	return options, nil
}
