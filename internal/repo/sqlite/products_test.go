package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/model"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

func testProduct(id, name string) *model.Product {
	return &model.Product{
		ID:        id,
		StoreID:   "store-1",
		Name:      name,
		Category:  "abarrotes",
		SKU:       "SKU-" + id,
		Barcode:   "750" + id,
		Active:    true,
		PriceBS:   36.5,
		PriceUSD:  1,
		UpdatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProductRepo_SaveAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testProduct("p-1", "Harina PAN")
	if err := store.Products().Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Products().FindByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name != "Harina PAN" || got.PriceBS != 36.5 || !got.Active {
		t.Errorf("round trip mangled: %+v", got)
	}
}

func TestProductRepo_SaveIsUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testProduct("p-1", "Harina PAN")
	if err := store.Products().Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p.Name = "Harina PAN 1kg"
	p.PriceBS = 40
	if err := store.Products().Save(ctx, p); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, _ := store.Products().FindByID(ctx, "p-1")
	if got.Name != "Harina PAN 1kg" || got.PriceBS != 40 {
		t.Errorf("upsert did not replace: %+v", got)
	}
	n, _ := store.Products().Count(ctx)
	if n != 1 {
		t.Errorf("Count = %d after upsert, want 1", n)
	}
}

func TestProductRepo_SearchMatchesAndOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, p := range []*model.Product{
		testProduct("p-1", "Café Madrid"),
		testProduct("p-2", "Arroz Primor"),
		testProduct("p-3", "Azúcar Montalbán"),
	} {
		if err := store.Products().Save(ctx, p); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	// Case-insensitive match on name.
	got, err := store.Products().Search(ctx, "store-1", "aRr", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-2" {
		t.Fatalf("Search(aRr) = %v", ids(got))
	}

	// SKU hits too.
	got, err = store.Products().Search(ctx, "store-1", "sku-p-3", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-3" {
		t.Fatalf("Search(sku-p-3) = %v", ids(got))
	}

	// Barcode prefix matches all three; order is name ascending.
	got, err = store.Products().Search(ctx, "store-1", "750p", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Search(750p) returned %d, want 3", len(got))
	}
	if got[0].Name != "Arroz Primor" || got[2].Name != "Café Madrid" {
		t.Errorf("Search order = %v, want name ascending", names(got))
	}

	// Limit caps the result.
	got, err = store.Products().Search(ctx, "store-1", "750p", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Search with limit 2 returned %d", len(got))
	}

	// Other stores never leak in.
	got, err = store.Products().Search(ctx, "store-2", "750p", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Search in empty store returned %d", len(got))
	}
}

func TestProductRepo_SaveKeepsIndexedColumnsInStep(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testProduct("p-1", "Cacao Viejo")
	p.Barcode = "B-OLD"
	if err := store.Products().Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p.Name = "Arroz Nuevo"
	p.Barcode = "B-NEW"
	if err := store.Products().Save(ctx, p); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	// The filter columns see only the updated values.
	got, err := store.Products().Search(ctx, "store-1", "arroz", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-1" {
		t.Fatalf("Search(arroz) = %v", ids(got))
	}
	got, err = store.Products().Search(ctx, "store-1", "cacao", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search(cacao) still matches the old name: %v", ids(got))
	}
	if _, err := store.Products().FindByBarcode(ctx, "store-1", "B-NEW"); err != nil {
		t.Fatalf("FindByBarcode(B-NEW): %v", err)
	}
	if _, err := store.Products().FindByBarcode(ctx, "store-1", "B-OLD"); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("FindByBarcode(B-OLD) = %v, want ErrNotFound", err)
	}

	// Ordering follows the updated name column.
	if err := store.Products().Save(ctx, testProduct("p-2", "Café Madrid")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	all, err := store.Products().FindByStoreID(ctx, "store-1")
	if err != nil {
		t.Fatalf("FindByStoreID: %v", err)
	}
	if len(all) != 2 || all[0].ID != "p-1" || all[1].ID != "p-2" {
		t.Errorf("order after rename = %v, want updated name ascending", names(all))
	}

	// And the document agrees with the columns.
	doc, err := store.Products().FindByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if doc.Name != "Arroz Nuevo" || doc.Barcode != "B-NEW" {
		t.Errorf("doc = %+v, disagrees with filter columns", doc)
	}
}

func TestProductRepo_SearchMatchesWildcardsLiterally(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, p := range []*model.Product{
		testProduct("p-1", "Cacao"),
		testProduct("p-2", "Cacao 100%"),
		testProduct("p-3", "Queso_Blanco"),
	} {
		if err := store.Products().Save(ctx, p); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	// A % in the query is a literal percent sign, not match-anything.
	got, err := store.Products().Search(ctx, "store-1", "%", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-2" {
		t.Fatalf("Search(%%) = %v, want only the literal match", ids(got))
	}

	got, err = store.Products().Search(ctx, "store-1", "100%", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-2" {
		t.Fatalf("Search(100%%) = %v", ids(got))
	}

	// Same for underscore, which LIKE would otherwise treat as any-char.
	got, err = store.Products().Search(ctx, "store-1", "o_B", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-3" {
		t.Fatalf("Search(o_B) = %v, want only the literal match", ids(got))
	}
}

func TestProductRepo_FindByBarcode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Products().Save(ctx, testProduct("p-1", "Harina PAN")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Products().FindByBarcode(ctx, "store-1", "750p-1")
	if err != nil {
		t.Fatalf("FindByBarcode: %v", err)
	}
	if got.ID != "p-1" {
		t.Errorf("FindByBarcode = %s", got.ID)
	}

	_, err = store.Products().FindByBarcode(ctx, "store-1", "000000")
	if !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("missing barcode = %v, want ErrNotFound", err)
	}
}

func TestProductRepo_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Products().Save(ctx, testProduct("p-1", "Harina PAN")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Products().Delete(ctx, "p-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Products().Delete(ctx, "p-1"); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestProductRepo_ValidationRejected(t *testing.T) {
	store := newTestStore(t)

	err := store.Products().Save(context.Background(), &model.Product{ID: "p-1"})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Save invalid product = %v, want *ValidationError", err)
	}
}

func ids(products []*model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func names(products []*model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}
