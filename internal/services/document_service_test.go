package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartFileHeader builds a real *multipart.FileHeader the way gin would
// hand it to the handler.
func multipartFileHeader(t *testing.T, fileName, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func uploadDocument(t *testing.T, env *testEnv, category *models.Category, fileName, content string) *models.Document {
	t.Helper()
	doc, err := newDocumentService(env).Upload(context.Background(), env.db, adminUser(),
		&dto.UploadDocumentRequest{Title: fileName, CategoryID: category.ID},
		multipartFileHeader(t, fileName, content))
	require.NoError(t, err)
	return doc
}

func TestDocumentUploadNormalizesFileName(t *testing.T) {
	env := newTestEnv(t)
	property := createProperty(t, env, "Fazenda Norte")
	category := createCategory(t, env, property, "Contratos")

	doc, err := newDocumentService(env).Upload(context.Background(), env.db, adminUser(),
		&dto.UploadDocumentRequest{Title: "Annual report", CategoryID: category.ID},
		multipartFileHeader(t, "Relatório (2023).PDF", "pdf bytes"))
	require.NoError(t, err)

	assert.Equal(t, "relatorio-2023.pdf", doc.FileName)
	assert.Equal(t, "Relatório (2023).PDF", doc.OriginalFileName)
	assert.Equal(t, "fazenda-norte/contratos/relatorio-2023.pdf", doc.FilePath)
	assert.Equal(t, "fazenda-norte", doc.PropertySlug)
	assert.True(t, env.fileExists(t, doc.FilePath))
}

func TestDocumentUploadUnknownCategory(t *testing.T) {
	env := newTestEnv(t)

	_, err := newDocumentService(env).Upload(context.Background(), env.db, adminUser(),
		&dto.UploadDocumentRequest{Title: "x", CategoryID: "44444444-4444-4444-4444-444444444444"},
		multipartFileHeader(t, "x.pdf", "x"))
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestDocumentListFilteredByEntitlement(t *testing.T) {
	env := newTestEnv(t)
	north := createProperty(t, env, "Fazenda Norte")
	south := createProperty(t, env, "Fazenda Sul")
	northCat := createCategory(t, env, north, "Contratos")
	southCat := createCategory(t, env, south, "Contratos")
	uploadDocument(t, env, northCat, "north.pdf", "n")
	uploadDocument(t, env, southCat, "south.pdf", "s")
	svc := newDocumentService(env)

	all, err := svc.List(env.db, adminUser(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := svc.List(env.db, regularUser("fazenda-sul"), "")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "south.pdf", visible[0].FileName)

	// Scoping to an unentitled category answers not-found.
	_, err = svc.List(env.db, regularUser("fazenda-sul"), northCat.ID)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestDocumentHighlighted(t *testing.T) {
	env := newTestEnv(t)
	svc := newDocumentService(env)
	property := createProperty(t, env, "Fazenda Norte")
	category := createCategory(t, env, property, "Contratos")
	doc := uploadDocument(t, env, category, "a.pdf", "a")
	uploadDocument(t, env, category, "b.pdf", "b")

	_, err := svc.Update(context.Background(), env.db, doc.ID, &dto.UpdateDocumentRequest{
		IsHighlighted: boolPtr(true),
	})
	require.NoError(t, err)

	highlighted, err := svc.ListHighlighted(env.db, adminUser())
	require.NoError(t, err)
	require.Len(t, highlighted, 1)
	assert.Equal(t, doc.ID, highlighted[0].ID)

	// A user without entitlements sees nothing highlighted.
	none, err := svc.ListHighlighted(env.db, regularUser())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocumentGetHiddenWithoutEntitlement(t *testing.T) {
	env := newTestEnv(t)
	property := createProperty(t, env, "Fazenda Norte")
	category := createCategory(t, env, property, "Contratos")
	doc := uploadDocument(t, env, category, "a.pdf", "a")

	_, err := newDocumentService(env).Get(env.db, regularUser("elsewhere"), doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
}

func TestDocumentMoveBetweenCategories(t *testing.T) {
	env := newTestEnv(t)
	svc := newDocumentService(env)
	ctx := context.Background()

	north := createProperty(t, env, "Fazenda Norte")
	south := createProperty(t, env, "Fazenda Sul")
	srcCat := createCategory(t, env, north, "Contratos")
	dstCat := createCategory(t, env, south, "Licenças")
	doc := uploadDocument(t, env, srcCat, "contract.pdf", "content")

	moved, err := svc.Update(ctx, env.db, doc.ID, &dto.UpdateDocumentRequest{
		CategoryID: strPtr(dstCat.ID),
	})
	require.NoError(t, err)

	assert.Equal(t, dstCat.ID, moved.CategoryID)
	assert.Equal(t, "fazenda-sul", moved.PropertySlug)
	assert.Equal(t, "fazenda-sul/licencas/contract.pdf", moved.FilePath)
	assert.True(t, env.fileExists(t, "fazenda-sul/licencas/contract.pdf"))
	assert.False(t, env.fileExists(t, "fazenda-norte/contratos/contract.pdf"))
}

func TestDocumentDeleteRemovesFile(t *testing.T) {
	env := newTestEnv(t)
	svc := newDocumentService(env)
	ctx := context.Background()

	property := createProperty(t, env, "Fazenda Norte")
	category := createCategory(t, env, property, "Contratos")
	doc := uploadDocument(t, env, category, "contract.pdf", "content")

	require.NoError(t, svc.Delete(ctx, env.db, doc.ID))

	_, err := svc.Get(env.db, adminUser(), doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
	assert.False(t, env.fileExists(t, doc.FilePath))
}

func TestDocumentDownloadContract(t *testing.T) {
	env := newTestEnv(t)
	svc := newDocumentService(env)
	ctx := context.Background()

	property := createProperty(t, env, "Fazenda Norte")
	category := createCategory(t, env, property, "Contratos")
	doc := uploadDocument(t, env, category, "contract.pdf", "content")

	resp, err := svc.Download(ctx, env.db, adminUser(), doc.ID)
	require.NoError(t, err)

	// Local backend URLs are signed paths under the base URL.
	assert.True(t, strings.HasPrefix(resp.URL, "/files/fazenda-norte/contratos/contract.pdf?"), "got %s", resp.URL)
	assert.Contains(t, resp.URL, "sig=")
	assert.Greater(t, resp.ExpiresAt, time.Now().Unix())

	// Entitlement applies to downloads too.
	_, err = svc.Download(ctx, env.db, regularUser("elsewhere"), doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
}
