package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockAttributeRepository(t *testing.T) (*GormAttributeRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormAttributeRepository(db), mock
}

// The attribute insert must carry ON CONFLICT DO NOTHING on the postgres
// dialect: a failed INSERT aborts the whole surrounding transaction there,
// which would poison the per-item import transaction on every slug or name
// collision. A skipped insert surfaces as ErrAlreadyExists instead.
func TestGormAttributeRepository_Create_CollisionRaisesNoStatementError(t *testing.T) {
	repo, mock := newMockAttributeRepository(t)
	attr := catalog.NewAttribute("Цвет!", "tsvet", "красный")

	mock.ExpectExec(`INSERT INTO "attributes" .* ON CONFLICT DO NOTHING`).
		WithArgs(attr.ID, sqlmock.AnyArg(), sqlmock.AnyArg(), "Цвет!", "tsvet", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), attr)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAttributeRepository_Create_Inserts(t *testing.T) {
	repo, mock := newMockAttributeRepository(t)
	attr := catalog.NewAttribute("Вес", "ves", "120")

	mock.ExpectExec(`INSERT INTO "attributes" .* ON CONFLICT DO NOTHING`).
		WithArgs(attr.ID, sqlmock.AnyArg(), sqlmock.AnyArg(), "Вес", "ves", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), attr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A slug collision inside the per-item transaction leaves the transaction
// usable: the skipped insert is reported, the follow-up lookup still works
// and the retry with a suffixed slug lands.
func TestGormAttributeRepository_Create_TransactionStaysUsable(t *testing.T) {
	db := setupCatalogDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, store.Attributes().Create(ctx, catalog.NewAttribute("Цвет", "tsvet", "красный")))

	err := store.InTransaction(ctx, func(tx catalog.Store) error {
		createErr := tx.Attributes().Create(ctx, catalog.NewAttribute("Цвет!", "tsvet", "красный"))
		assert.ErrorIs(t, createErr, shared.ErrAlreadyExists)

		_, findErr := tx.Attributes().FindByName(ctx, "Цвет!")
		assert.ErrorIs(t, findErr, shared.ErrNotFound)

		return tx.Attributes().Create(ctx, catalog.NewAttribute("Цвет!", "tsvet-2", "красный"))
	})
	require.NoError(t, err)

	attr, err := store.Attributes().FindByName(ctx, "Цвет!")
	require.NoError(t, err)
	assert.Equal(t, "tsvet-2", attr.Slug)
}
