package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/internal/storage"
	"github.com/silomba/backend/pkg/utils"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Competition{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed creating test category: %v", err)
	}
	return category
}

type competitionFixture struct {
	Title      string
	Status     models.CompetitionStatus
	EndsIn     time.Duration
	IsArchived bool
	AuthorID   *uuid.UUID
	PosterURL  string
}

func createTestCompetition(t *testing.T, db *gorm.DB, category *models.Category, f competitionFixture) *models.Competition {
	t.Helper()

	now := time.Now().UTC()
	if f.Title == "" {
		f.Title = "Hackathon"
	}
	if f.Status == "" {
		f.Status = models.CompetitionStatusAccepted
	}
	if f.EndsIn == 0 {
		f.EndsIn = 72 * time.Hour
	}
	if f.PosterURL == "" {
		f.PosterURL = "/uploads/poster-" + uuid.NewString() + ".png"
	}

	competition := &models.Competition{
		Title:                 f.Title,
		PosterURL:             f.PosterURL,
		RegistrationStartDate: now.Add(-30 * 24 * time.Hour),
		RegistrationEndDate:   now.Add(f.EndsIn),
		CategoryID:            category.ID,
		AuthorID:              f.AuthorID,
		Status:                f.Status,
		IsArchived:            f.IsArchived,
	}
	if err := db.Omit("Category", "Author").Create(competition).Error; err != nil {
		t.Fatalf("failed creating test competition: %v", err)
	}
	return competition
}

// recordingStore is an in-memory PosterStore that remembers deletions.
type recordingStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	deleteErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{objects: map[string][]byte{}}
}

func (s *recordingStore) put(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = []byte("poster")
}

func (s *recordingStore) Save(_ context.Context, name string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	return nil
}

func (s *recordingStore) Open(_ context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Size: int64(len(data))}, nil
}

func (s *recordingStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, name)
	if _, ok := s.objects[name]; !ok {
		return storage.ErrNotFound
	}
	delete(s.objects, name)
	return nil
}

func (s *recordingStore) deletedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *recordingStore) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok
}

var errStoreDown = errors.New("store unavailable")

func strPtr(value string) *string {
	return &value
}

func timePtr(value time.Time) *time.Time {
	return &value
}

func uuidPtr(value uuid.UUID) *uuid.UUID {
	return &value
}
