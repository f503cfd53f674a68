package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"
	"agrodocs_backend/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires real repositories against sqlite, a real registry against
// miniredis and real file storage in a temp dir. Only the process boundary is
// faked; semantics under test are the production ones.
type testEnv struct {
	db       *gorm.DB
	basePath string

	userRepo     repositories.UserRepository
	propertyRepo repositories.PropertyRepository
	categoryRepo repositories.CategoryRepository
	documentRepo repositories.DocumentRepository
	registry     repositories.RefreshTokenRegistry

	local *storage.LocalStorage
	files FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Category{},
		&models.Document{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	basePath := t.TempDir()
	local, err := storage.NewLocalStorage(storage.Config{
		BasePath:   basePath,
		BaseURL:    "/files",
		SigningKey: "test-key",
	})
	require.NoError(t, err)

	return &testEnv{
		db:           db,
		basePath:     basePath,
		userRepo:     repositories.NewUserRepository(),
		propertyRepo: repositories.NewPropertyRepository(),
		categoryRepo: repositories.NewCategoryRepository(),
		documentRepo: repositories.NewDocumentRepository(),
		registry:     repositories.NewRefreshTokenRegistry(client),
		local:        local,
		files:        NewFileService(local, time.Hour),
	}
}

func (e *testEnv) fileExists(t *testing.T, relativePath string) bool {
	t.Helper()
	ok, err := e.local.Exists(context.Background(), relativePath)
	require.NoError(t, err)
	return ok
}

func (e *testEnv) writeFile(t *testing.T, relativePath, content string) {
	t.Helper()
	require.NoError(t, e.local.Save(context.Background(), relativePath, strings.NewReader(content), ""))
}

func adminUser() *models.User {
	return &models.User{Role: models.UserRoleAdmin}
}

func newCategoryService(env *testEnv) CategoryService {
	return NewCategoryService(env.categoryRepo, env.propertyRepo, env.documentRepo, env.files)
}

func newDocumentService(env *testEnv) DocumentService {
	return NewDocumentService(env.documentRepo, env.categoryRepo, env.files)
}

// seedDocument writes a file into the category's container and creates the
// matching record, bypassing the multipart upload path.
func seedDocument(t *testing.T, env *testEnv, category *models.Category, fileName, content string) *models.Document {
	t.Helper()
	doc := seedDocumentRecordOnly(t, env, category, fileName)
	env.writeFile(t, doc.FilePath, content)
	return doc
}

// seedDocumentRecordOnly creates a document row whose file does not exist.
func seedDocumentRecordOnly(t *testing.T, env *testEnv, category *models.Category, fileName string) *models.Document {
	t.Helper()
	doc := &models.Document{
		Title:            fileName,
		FileName:         fileName,
		OriginalFileName: fileName,
		FilePath:         env.files.Path(category.PropertySlug, category.Slug, fileName),
		FileType:         "application/pdf",
		CategoryID:       category.ID,
		PropertySlug:     category.PropertySlug,
	}
	require.NoError(t, env.documentRepo.Create(env.db, doc))
	return doc
}

func regularUser(slugs ...string) *models.User {
	return &models.User{
		Role:       models.UserRoleUser,
		Properties: datatypes.NewJSONSlice(slugs),
	}
}
