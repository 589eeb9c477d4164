package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/pkg/db"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	pkgerrors "github.com/dramirezh/tienda-backend/pkg/errors"
)

func newCatalogService(t *testing.T) Service {
	t.Helper()

	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))

	svc, err := NewService(NewRepository(conn), db.FromGorm(conn))
	require.NoError(t, err)
	return svc
}

func TestCreateAndGetProduct(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Name:  "Teclado mecánico",
		Price: decimal.RequireFromString("10.00"),
		Stock: 5,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Teclado mecánico", got.Name)
	assert.Equal(t, 5, got.Stock)

	_, err = svc.GetByID(ctx, 9999)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductInput{Price: decimal.RequireFromString("1.00")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, CreateProductInput{Name: "x", Price: decimal.RequireFromString("-1.00")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestListFiltersInactive(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := context.Background()

	kept, err := svc.Create(ctx, CreateProductInput{Name: "Activo", Price: decimal.RequireFromString("1.00")})
	require.NoError(t, err)
	retired, err := svc.Create(ctx, CreateProductInput{Name: "Retirado", Price: decimal.RequireFromString("2.00")})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, retired.ID))

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateProductFields(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Name: "Mouse", Price: decimal.RequireFromString("20.00")})
	require.NoError(t, err)

	newName := "Mouse inalámbrico"
	newPrice := decimal.RequireFromString("25.50")
	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{Name: &newName, Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.True(t, updated.Price.Equal(newPrice))
	// Stock is untouched by listing edits.
	assert.Equal(t, created.Stock, updated.Stock)
}

func TestRestockAddsStock(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{Name: "Audífonos", Price: decimal.RequireFromString("15.00"), Stock: 2})
	require.NoError(t, err)

	restocked, err := svc.Restock(ctx, created.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 10, restocked.Stock)

	_, err = svc.Restock(ctx, created.ID, 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
