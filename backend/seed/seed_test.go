package seed

import (
	"context"
	"testing"

	"updaily/backend/models"
	"updaily/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogCoversEveryCategory(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	retos := map[string]int{}
	for _, r := range catalog.Retos {
		retos[r.Category]++
	}
	for _, category := range models.Categories {
		assert.GreaterOrEqual(t, retos[string(category)], 2, category)
	}
	assert.NotEmpty(t, catalog.Templates)
}

func TestParseRejectsUnknownCategory(t *testing.T) {
	_, err := Parse([]byte("retos:\n  - name: X\n    category: MUSICA\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("templates:\n  - category: SOCIAL\n"))
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	catalog, err := Default()
	require.NoError(t, err)
	ctx := context.Background()

	first, err := Seed(ctx, db, catalog)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.Retos), first.Retos)
	assert.Equal(t, len(catalog.Templates), first.Templates)
	assert.Positive(t, first.Criteria)

	second, err := Seed(ctx, db, catalog)
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	var active int64
	require.NoError(t, db.Model(&models.Reto{}).Where("is_active = ?", true).Count(&active).Error)
	assert.Equal(t, int64(len(catalog.Retos)), active)
}
