package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

// ClientRepository manages persistence for clients.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func clientListQuery(filter models.ClientFilter) listQuery {
	q := listQuery{
		name: "clients",
		columns: []string{
			"c.id", "c.name", "c.inn", "c.is_vip",
			"(SELECT COUNT(*) FROM site s WHERE s.client_id = c.id) AS site_count",
		},
		from: "client c",
		sorts: map[string]string{
			"name":       "c.name",
			"inn":        "c.inn",
			"site_count": "site_count",
		},
		key: "c.id",
	}
	q.filter(contains("c.name", filter.Name))
	q.filter(eq("c.inn", filter.INN))
	q.filter(eq("c.is_vip", filter.IsVIP))
	return q
}

// List returns clients matching the filter.
func (r *ClientRepository) List(ctx context.Context, filter models.ClientFilter, params models.ListParams) ([]models.ClientListItem, int, error) {
	return runList[models.ClientListItem](ctx, r.db, clientListQuery(filter), params)
}

// FindByID fetches a client.
func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	const query = `SELECT c.id, c.name, c.inn, c.address, c.contact_person_email, c.contact_person_name, c.is_vip,
        (SELECT COUNT(*) FROM site s WHERE s.client_id = c.id) AS site_count
        FROM client c WHERE c.id = $1`
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}
	return &client, nil
}

// Create inserts a client and sets its id.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	const query = `INSERT INTO client (name, inn, address, contact_person_email, contact_person_name, is_vip)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &client.ID, query,
		client.Name, client.INN, client.Address, client.ContactPersonEmail, client.ContactPersonName, client.IsVIP); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// Update modifies a client. It returns sql.ErrNoRows when the id is unknown.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	const query = `UPDATE client SET name = $1, inn = $2, address = $3, contact_person_email = $4,
        contact_person_name = $5, is_vip = $6 WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		client.Name, client.INN, client.Address, client.ContactPersonEmail, client.ContactPersonName, client.IsVIP, client.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a client without sites.
func (r *ClientRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin client delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "client", id); err != nil {
		return err
	}
	sites, err := count(ctx, tx, `SELECT COUNT(*) FROM site WHERE client_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count client sites: %w", err)
	}
	if sites > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete client: it has %d sites", sites))
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM client WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit client delete: %w", err)
	}
	return nil
}
