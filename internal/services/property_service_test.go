package services

import (
	"context"
	"testing"

	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPropertyService(env *testEnv) PropertyService {
	return NewPropertyService(env.propertyRepo, env.categoryRepo, env.documentRepo, env.files)
}

func createProperty(t *testing.T, env *testEnv, name string) *models.Property {
	t.Helper()
	svc := newPropertyService(env)
	property, err := svc.Create(context.Background(), env.db, &dto.CreatePropertyRequest{Name: name})
	require.NoError(t, err)
	return property
}

func TestPropertyCreateSlugifiesName(t *testing.T) {
	env := newTestEnv(t)
	property := createProperty(t, env, "Fazenda São João")

	assert.Equal(t, "fazenda-sao-joao", property.Slug)
	assert.True(t, property.Active)
}

func TestPropertyCreateDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	createProperty(t, env, "Fazenda Norte")

	// A different name producing the same slug still collides.
	_, err := svc.Create(context.Background(), env.db, &dto.CreatePropertyRequest{Name: "Fazenda  NORTE"})
	assert.ErrorIs(t, err, apperrors.ErrPropertyExists)
}

func TestPropertyListFilteredByEntitlement(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	createProperty(t, env, "Fazenda Norte")
	createProperty(t, env, "Fazenda Sul")

	all, err := svc.List(env.db, adminUser())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := svc.List(env.db, regularUser("fazenda-norte"))
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "fazenda-norte", some[0].Slug)

	none, err := svc.List(env.db, regularUser())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPropertyGetByIDOrSlug(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	property := createProperty(t, env, "Fazenda Norte")

	byID, err := svc.Get(env.db, adminUser(), property.ID)
	require.NoError(t, err)
	assert.Equal(t, property.ID, byID.ID)

	bySlug, err := svc.Get(env.db, adminUser(), "fazenda-norte")
	require.NoError(t, err)
	assert.Equal(t, property.ID, bySlug.ID)
}

func TestPropertyGetHiddenWithoutEntitlement(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	createProperty(t, env, "Fazenda Norte")

	// Unentitled access answers not-found, not forbidden.
	_, err := svc.Get(env.db, regularUser("other-place"), "fazenda-norte")
	assert.ErrorIs(t, err, apperrors.ErrPropertyNotFound)
}

func TestPropertyDeleteBlockedByCategories(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	catSvc := newCategoryService(env)
	property := createProperty(t, env, "Fazenda Norte")

	_, err := catSvc.Create(context.Background(), env.db, &dto.CreateCategoryRequest{
		Name: "Contratos", Property: property.ID,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), env.db, property.ID)
	assert.ErrorIs(t, err, apperrors.ErrPropertyHasChildren)
}

func TestPropertyDeleteEmpty(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	property := createProperty(t, env, "Fazenda Norte")

	require.NoError(t, svc.Delete(context.Background(), env.db, property.ID))
	_, err := svc.Get(env.db, adminUser(), property.ID)
	assert.ErrorIs(t, err, apperrors.ErrPropertyNotFound)
}

func TestPropertyRenameCascades(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	catSvc := newCategoryService(env)
	ctx := context.Background()

	property := createProperty(t, env, "Fazenda Norte")
	category, err := catSvc.Create(ctx, env.db, &dto.CreateCategoryRequest{
		Name: "Contratos", Property: property.ID,
	})
	require.NoError(t, err)

	docA := seedDocument(t, env, category, "contract-a.pdf", "aaa")
	docB := seedDocument(t, env, category, "contract-b.pdf", "bbb")
	// A third document whose file vanished from disk: the cascade must skip
	// it and still move the others.
	ghost := seedDocumentRecordOnly(t, env, category, "ghost.pdf")

	renamed, err := svc.Update(ctx, env.db, property.ID, &dto.UpdatePropertyRequest{
		Name: strPtr("Fazenda Nova"),
	})
	require.NoError(t, err)
	assert.Equal(t, "fazenda-nova", renamed.Slug)

	// Denormalized category slug follows.
	cat, err := env.categoryRepo.FindByID(env.db, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "fazenda-nova", cat.PropertySlug)

	// Files moved on disk; records point at the new paths.
	for _, id := range []string{docA.ID, docB.ID} {
		doc, err := env.documentRepo.FindByID(env.db, id)
		require.NoError(t, err)
		assert.Equal(t, "fazenda-nova", doc.PropertySlug)
		assert.True(t, env.fileExists(t, doc.FilePath), "file should exist at %s", doc.FilePath)
	}
	assert.False(t, env.fileExists(t, "fazenda-norte/contratos/contract-a.pdf"))

	// The ghost document kept its old path, untouched by the failed move.
	ghostDoc, err := env.documentRepo.FindByID(env.db, ghost.ID)
	require.NoError(t, err)
	assert.Equal(t, "fazenda-norte/contratos/ghost.pdf", ghostDoc.FilePath)
}

func TestPropertyRenameToTakenSlug(t *testing.T) {
	env := newTestEnv(t)
	svc := newPropertyService(env)
	createProperty(t, env, "Fazenda Norte")
	second := createProperty(t, env, "Fazenda Sul")

	_, err := svc.Update(context.Background(), env.db, second.ID, &dto.UpdatePropertyRequest{
		Name: strPtr("Fazenda Norte"),
	})
	assert.ErrorIs(t, err, apperrors.ErrPropertyExists)
}
