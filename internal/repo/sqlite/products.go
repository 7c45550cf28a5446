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

// ProductRepo implements repo.ProductRepository on SQLite. Entities are
// stored as a JSON document in the doc column; store_id, name, category,
// sku and barcode are denormalized for filtering and sorting only.
type ProductRepo struct {
	db executor
}

// Compile-time check that ProductRepo implements repo.ProductRepository.
var _ repo.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT doc FROM products WHERE id = ?`, id)
	p, err := scanDoc[model.Product](row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) FindAll(ctx context.Context) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM products ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanDocs[model.Product](rows)
}

// Save upserts: the document and its denormalized columns are written in
// one statement, so the two can never disagree.
func (r *ProductRepo) Save(ctx context.Context, p *model.Product) error {
	if err := model.ValidateProduct(p); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (id, store_id, name, category, sku, barcode, is_active, doc, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			store_id = excluded.store_id,
			name = excluded.name,
			category = excluded.category,
			sku = excluded.sku,
			barcode = excluded.barcode,
			is_active = excluded.is_active,
			doc = excluded.doc,
			updated_at = excluded.updated_at`,
		p.ID, p.StoreID, p.Name,
		nullString(p.Category), nullString(p.SKU), nullString(p.Barcode),
		p.Active, doc, toMillis(p.UpdatedAt),
	)
	return translateErr(err)
}

func (r *ProductRepo) SaveAll(ctx context.Context, products []*model.Product) error {
	for _, p := range products {
		if err := r.Save(ctx, p); err != nil {
			return fmt.Errorf("save product %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
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

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

func (r *ProductRepo) FindByStoreID(ctx context.Context, storeID string) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT doc FROM products WHERE store_id = ? ORDER BY name ASC, id ASC`, storeID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	return scanDocs[model.Product](rows)
}

func (r *ProductRepo) FindByBarcode(ctx context.Context, storeID, barcode string) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT doc FROM products WHERE store_id = ? AND barcode = ?`, storeID, barcode)
	p, err := scanDoc[model.Product](row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Search matches name, SKU and barcode case-insensitively (SQLite LIKE
// is case-insensitive for ASCII), ordered by name ascending. A % or _ in
// the query matches itself, never as a wildcard. The contract (fields
// matched, relative order) is identical on both backends.
func (r *ProductRepo) Search(ctx context.Context, storeID, query string, limit int) ([]*model.Product, error) {
	q := `
		SELECT doc FROM products
		WHERE store_id = ?
		  AND (name LIKE ? ESCAPE '\'
		    OR sku LIKE ? ESCAPE '\'
		    OR barcode LIKE ? ESCAPE '\')
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
	return scanDocs[model.Product](rows)
}
