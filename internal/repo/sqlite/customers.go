package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

// CustomerRepo implements repo.CustomerRepository on SQLite.
type CustomerRepo struct {
	db executor
}

var _ repo.CustomerRepository = (*CustomerRepo)(nil)

func (r *CustomerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT doc FROM customers WHERE id = ?`, id)
	c, err := scanDoc[model.Customer](row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CustomerRepo) FindAll(ctx context.Context) ([]*model.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM customers ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanDocs[model.Customer](rows)
}

func (r *CustomerRepo) Save(ctx context.Context, c *model.Customer) error {
	if err := model.ValidateCustomer(c); err != nil {
		return err
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO customers (id, store_id, name, document_id, phone, doc, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			store_id = excluded.store_id,
			name = excluded.name,
			document_id = excluded.document_id,
			phone = excluded.phone,
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		c.ID, c.StoreID, c.Name,
		nullString(c.DocumentID), nullString(c.Phone),
		doc, toMillis(c.UpdatedAt),
	)
	return translateErr(err)
}

func (r *CustomerRepo) SaveAll(ctx context.Context, customers []*model.Customer) error {
	for _, c := range customers {
		if err := r.Save(ctx, c); err != nil {
			return fmt.Errorf("save customer %s: %w", c.ID, err)
		}
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return translateErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

func (r *CustomerRepo) FindByStoreID(ctx context.Context, storeID string) ([]*model.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT doc FROM customers WHERE store_id = ? ORDER BY name ASC, id ASC`, storeID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanDocs[model.Customer](rows)
}

// Search matches name, document id and phone case-insensitively, ordered
// by name ascending. A % or _ in the query matches itself, never as a
// wildcard.
func (r *CustomerRepo) Search(ctx context.Context, storeID, query string, limit int) ([]*model.Customer, error) {
	q := `
		SELECT doc FROM customers
		WHERE store_id = ?
		  AND (name LIKE ? ESCAPE '\'
		    OR document_id LIKE ? ESCAPE '\'
		    OR phone LIKE ? ESCAPE '\')
		ORDER BY name ASC, id ASC`
	pattern := searchPattern(query)
	args := []any{storeID, pattern, pattern, pattern}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanDocs[model.Customer](rows)
}
