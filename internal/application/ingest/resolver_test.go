package ingest

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupStore(t *testing.T) (*gorm.DB, catalog.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, persistence.AutoMigrate(db))
	return db, persistence.NewGormStore(db)
}

func TestDictionaryResolver_ResolveCategoryPath(t *testing.T) {
	db, store := setupStore(t)
	resolver := NewDictionaryResolver(store)
	ctx := context.Background()

	t.Run("walks root to leaf", func(t *testing.T) {
		leaf, err := resolver.ResolveCategoryPath(ctx, "Игрушки/Вибраторы")
		require.NoError(t, err)
		require.NotNil(t, leaf)
		assert.Equal(t, "Вибраторы", leaf.Name)
		require.NotNil(t, leaf.ParentID)

		parent, err := store.Categories().FindByID(ctx, *leaf.ParentID)
		require.NoError(t, err)
		assert.Equal(t, "Игрушки", parent.Name)
		assert.True(t, parent.IsRoot())
	})

	t.Run("resolving the same path twice creates no duplicates", func(t *testing.T) {
		first, err := resolver.ResolveCategoryPath(ctx, "Игрушки/Вибраторы")
		require.NoError(t, err)
		second, err := resolver.ResolveCategoryPath(ctx, "Игрушки/Вибраторы")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.Model(&catalog.Category{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("empty segments are skipped", func(t *testing.T) {
		leaf, err := resolver.ResolveCategoryPath(ctx, "Игрушки//Вибраторы/")
		require.NoError(t, err)
		require.NotNil(t, leaf)
		assert.Equal(t, "Вибраторы", leaf.Name)
	})

	t.Run("empty path resolves to nil", func(t *testing.T) {
		leaf, err := resolver.ResolveCategoryPath(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, leaf)

		leaf, err = resolver.ResolveCategoryPath(ctx, " / ")
		require.NoError(t, err)
		assert.Nil(t, leaf)
	})
}

func TestDictionaryResolver_ResolveBrand_IncompleteRef(t *testing.T) {
	_, store := setupStore(t)
	resolver := NewDictionaryResolver(store)
	ctx := context.Background()

	brand, err := resolver.ResolveBrand(ctx, catalog.EntityRef{UID: "B-1"})
	require.NoError(t, err)
	assert.Nil(t, brand)

	brand, err = resolver.ResolveBrand(ctx, catalog.EntityRef{Name: "Acme"})
	require.NoError(t, err)
	assert.Nil(t, brand)
}

func TestDictionaryResolver_ResolveAttribute(t *testing.T) {
	db, store := setupStore(t)
	resolver := NewDictionaryResolver(store)
	ctx := context.Background()

	t.Run("creates with classified type", func(t *testing.T) {
		attr, err := resolver.ResolveAttribute(ctx, "Вес", "120")
		require.NoError(t, err)
		assert.Equal(t, "ves", attr.Slug)
		assert.Equal(t, catalog.AttributeTypeNumber, attr.Type)
	})

	t.Run("second resolution returns the existing attribute", func(t *testing.T) {
		first, err := resolver.ResolveAttribute(ctx, "Цвет", "Красный")
		require.NoError(t, err)
		second, err := resolver.ResolveAttribute(ctx, "Цвет", "12")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		// Type was fixed at creation and is not re-classified
		assert.Equal(t, catalog.AttributeTypeString, second.Type)
	})

	t.Run("slug collision gets a numeric suffix", func(t *testing.T) {
		// "Цвет!" slugifies to the already taken "tsvet"
		attr, err := resolver.ResolveAttribute(ctx, "Цвет!", "Синий")
		require.NoError(t, err)
		assert.Equal(t, "Цвет!", attr.Name)
		assert.Equal(t, "tsvet-2", attr.Slug)
	})

	t.Run("unslugifiable name falls back", func(t *testing.T) {
		attr, err := resolver.ResolveAttribute(ctx, "???", "x")
		require.NoError(t, err)
		assert.Equal(t, "attribute", attr.Slug)
	})

	var count int64
	require.NoError(t, db.Model(&catalog.Attribute{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestDictionaryResolver_ResolveAttributeValue(t *testing.T) {
	db, store := setupStore(t)
	resolver := NewDictionaryResolver(store)
	ctx := context.Background()

	selectAttr := &catalog.Attribute{
		BaseEntity: shared.NewBaseEntity(),
		Name:       "Материал",
		Slug:       "material",
		Type:       catalog.AttributeTypeSelect,
	}
	require.NoError(t, db.Create(selectAttr).Error)

	first, err := resolver.ResolveAttributeValue(ctx, selectAttr, "Силикон")
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)

	second, err := resolver.ResolveAttributeValue(ctx, selectAttr, "Латекс")
	require.NoError(t, err)
	assert.Equal(t, 1, second.SortOrder)

	// Re-resolution returns the existing entry with its original position
	again, err := resolver.ResolveAttributeValue(ctx, selectAttr, "Силикон")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 0, again.SortOrder)

	t.Run("rejects non-select attributes", func(t *testing.T) {
		textAttr := catalog.NewAttribute("Цвет", "tsvet", "Красный")
		_, err := resolver.ResolveAttributeValue(ctx, textAttr, "Красный")
		assert.Error(t, err)
	})
}
