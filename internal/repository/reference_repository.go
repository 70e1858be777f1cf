package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Referenced tables checked before a row pointing at them is written.
const (
	TableDepartment         = "department"
	TableArea               = "area"
	TableClient             = "client"
	TableSite               = "site"
	TableBrigade            = "brigade"
	TableWorker             = "worker"
	TableTechnicalPersonnel = "technical_personnel"
	TableEquipment          = "equipment"
	TableMaterial           = "material"
	TableTask               = "task"
)

var referenceTables = map[string]struct{}{
	TableDepartment:         {},
	TableArea:               {},
	TableClient:             {},
	TableSite:               {},
	TableBrigade:            {},
	TableWorker:             {},
	TableTechnicalPersonnel: {},
	TableEquipment:          {},
	TableMaterial:           {},
	TableTask:               {},
}

// ReferenceRepository answers existence checks for foreign keys.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs a ReferenceRepository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Exists reports whether table has a row with the given id.
func (r *ReferenceRepository) Exists(ctx context.Context, table string, id int64) (bool, error) {
	if _, ok := referenceTables[table]; !ok {
		return false, fmt.Errorf("unknown reference table %q", table)
	}
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = $1", pq.QuoteIdentifier(table))
	ok, err := exists(ctx, r.db, query, id)
	if err != nil {
		return false, fmt.Errorf("check %s reference: %w", table, err)
	}
	return ok, nil
}
