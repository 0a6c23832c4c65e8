package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/metrics"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SortNewest       = "newest"
	SortDeadlineAsc  = "deadline_asc"
	SortDeadlineDesc = "deadline_desc"
)

// CompetitionInput carries the writable fields of a competition. Nil means
// the field was not supplied. PosterURL is empty when no new poster came in.
type CompetitionInput struct {
	Title                 *string
	ShortDescription      *string
	FullDescription       *string
	Organizer             *string
	RegistrationStartDate *time.Time
	RegistrationEndDate   *time.Time
	EventDate             *time.Time
	RegistrationLink      *string
	ContactPerson         *string
	RegistrationFee       *string
	CategoryID            *uuid.UUID
	PosterURL             string
}

type CreateResult struct {
	Competition   *models.Competition
	InitialStatus models.CompetitionStatus
}

// Pending reports whether the submission still waits for moderation.
func (r CreateResult) Pending() bool {
	return r.InitialStatus == models.CompetitionStatusPending
}

type ActiveQuery struct {
	Search     string
	CategoryID *uuid.UUID
	Sort       string
}

type CompetitionService struct {
	DB      *gorm.DB
	Cleanup *CleanupService
	Now     func() time.Time
}

func NewCompetitionService(db *gorm.DB, cleanup *CleanupService) *CompetitionService {
	return &CompetitionService{DB: db, Cleanup: cleanup, Now: time.Now}
}

func (s *CompetitionService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// ListActive returns accepted, unarchived competitions whose registration is
// still open. Search is a case-sensitive substring match on the title.
func (s *CompetitionService) ListActive(ctx context.Context, q ActiveQuery) ([]models.Competition, error) {
	query := s.DB.WithContext(ctx).
		Preload("Category").
		Where("status = ?", models.CompetitionStatusAccepted).
		Where("is_archived = ?", false).
		Where("registration_end_date > ?", s.now())

	if search := strings.TrimSpace(q.Search); search != "" {
		query = query.Where(s.containsClause("title"), search)
	}
	if q.CategoryID != nil {
		query = query.Where("category_id = ?", *q.CategoryID)
	}

	switch q.Sort {
	case SortDeadlineAsc:
		query = query.Order("registration_end_date ASC")
	case SortDeadlineDesc:
		query = query.Order("registration_end_date DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var competitions []models.Competition
	if err := query.Find(&competitions).Error; err != nil {
		return nil, internalError("failed listing competitions", err)
	}
	return competitions, nil
}

// ListPending is the moderation queue, newest submissions first.
func (s *CompetitionService) ListPending(ctx context.Context) ([]models.Competition, error) {
	var competitions []models.Competition
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		Where("status = ?", models.CompetitionStatusPending).
		Where("is_archived = ?", false).
		Order("created_at DESC").
		Find(&competitions).Error
	if err != nil {
		return nil, internalError("failed listing pending competitions", err)
	}
	return competitions, nil
}

// ListArchived returns competitions archived by hand or past their deadline.
func (s *CompetitionService) ListArchived(ctx context.Context) ([]models.Competition, error) {
	var competitions []models.Competition
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Where("is_archived = ? OR registration_end_date <= ?", true, s.now()).
		Order("registration_end_date DESC").
		Find(&competitions).Error
	if err != nil {
		return nil, internalError("failed listing archived competitions", err)
	}
	return competitions, nil
}

// Get loads a competition for viewer. Unmoderated or rejected entries are
// only visible to moderators and to their author.
func (s *CompetitionService) Get(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Competition, error) {
	var competition models.Competition
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		First(&competition, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("competition not found")
		}
		return nil, internalError("failed fetching competition", err)
	}

	if competition.Status != models.CompetitionStatusAccepted && !canSeeUnpublished(viewer, &competition) {
		return nil, apperror.NotFound("competition not found")
	}
	return &competition, nil
}

func canSeeUnpublished(viewer *models.User, competition *models.Competition) bool {
	if viewer == nil {
		return false
	}
	if viewer.Role.In(models.Moderators...) {
		return true
	}
	return competition.AuthorID != nil && *competition.AuthorID == viewer.ID
}

// Create stores a new competition authored by actor. Students submit into the
// moderation queue, moderators publish directly.
func (s *CompetitionService) Create(ctx context.Context, actor *models.User, in CompetitionInput) (result *CreateResult, err error) {
	defer s.discardPosterOnError(in.PosterURL, &err)

	if actor == nil {
		return nil, apperror.ErrUnauthenticated
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" ||
		in.RegistrationStartDate == nil || in.RegistrationEndDate == nil ||
		in.CategoryID == nil {
		return nil, apperror.Validation("", "title, registrationStartDate, registrationEndDate and categoryId are required")
	}
	if in.PosterURL == "" {
		return nil, apperror.Validation(apperror.CodeInvalidPoster, "poster image is required")
	}
	if in.RegistrationEndDate.Before(*in.RegistrationStartDate) {
		return nil, apperror.ErrInvalidDateRange
	}

	db := s.DB.WithContext(ctx)
	if err := s.ensureCategory(db, *in.CategoryID); err != nil {
		return nil, err
	}

	status := models.CompetitionStatusPending
	if actor.Role.In(models.Moderators...) {
		status = models.CompetitionStatusAccepted
	}

	authorID := actor.ID
	competition := models.Competition{
		Title:                 strings.TrimSpace(*in.Title),
		PosterURL:             in.PosterURL,
		RegistrationStartDate: in.RegistrationStartDate.UTC(),
		RegistrationEndDate:   in.RegistrationEndDate.UTC(),
		CategoryID:            *in.CategoryID,
		AuthorID:              &authorID,
		Status:                status,
	}
	applyOptionalFields(&competition, in)

	if err := db.Omit(clause.Associations).Create(&competition).Error; err != nil {
		return nil, internalError("failed creating competition", err)
	}

	created, err := s.reload(db, competition.ID)
	if err != nil {
		return nil, err
	}

	metrics.CompetitionsCreated.WithLabelValues(string(status)).Inc()
	logger.InfoWithUser(actor.ID.String(), "competition_created", map[string]interface{}{
		"competition_id": created.ID.String(),
		"status":         string(status),
		"category_id":    created.CategoryID.String(),
	})

	return &CreateResult{Competition: created, InitialStatus: status}, nil
}

// Update applies a partial edit. Supplied dates are merged with the stored
// ones before the range check. A replaced poster is queued for removal after
// the row is saved.
func (s *CompetitionService) Update(ctx context.Context, id uuid.UUID, in CompetitionInput) (updated *models.Competition, err error) {
	defer s.discardPosterOnError(in.PosterURL, &err)

	db := s.DB.WithContext(ctx)

	competition, err := s.find(db, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.Validation("", "title cannot be empty")
		}
		competition.Title = title
	}

	start := competition.RegistrationStartDate
	if in.RegistrationStartDate != nil {
		start = in.RegistrationStartDate.UTC()
	}
	end := competition.RegistrationEndDate
	if in.RegistrationEndDate != nil {
		end = in.RegistrationEndDate.UTC()
	}
	if end.Before(start) {
		return nil, apperror.ErrInvalidDateRange
	}
	competition.RegistrationStartDate = start
	competition.RegistrationEndDate = end

	if in.CategoryID != nil {
		if err := s.ensureCategory(db, *in.CategoryID); err != nil {
			return nil, err
		}
		competition.CategoryID = *in.CategoryID
	}

	applyOptionalFields(competition, in)

	oldPoster := ""
	if in.PosterURL != "" && in.PosterURL != competition.PosterURL {
		oldPoster = competition.PosterURL
		competition.PosterURL = in.PosterURL
	}

	if err := db.Omit(clause.Associations).Save(competition).Error; err != nil {
		return nil, internalError("failed updating competition", err)
	}

	s.Cleanup.Enqueue(oldPoster)

	logger.Info("competition_updated", map[string]interface{}{
		"competition_id":  competition.ID.String(),
		"poster_replaced": oldPoster != "",
	})

	return s.reload(db, competition.ID)
}

// UpdateStatus moderates a pending competition to ACCEPTED or REJECTED.
// Decisions are final: an already moderated competition cannot be moved again.
func (s *CompetitionService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CompetitionStatus) (*models.Competition, error) {
	if !status.IsModerationOutcome() {
		return nil, apperror.ErrInvalidStatus
	}

	db := s.DB.WithContext(ctx)

	competition, err := s.find(db, id)
	if err != nil {
		return nil, err
	}
	if competition.Status != models.CompetitionStatusPending {
		return nil, apperror.ErrInvalidTransition
	}

	res := db.Model(&models.Competition{}).
		Where("id = ? AND status = ?", id, models.CompetitionStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": s.now(),
		})
	if res.Error != nil {
		return nil, internalError("failed updating competition status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrInvalidTransition
	}

	metrics.ModerationDecisions.WithLabelValues(string(status)).Inc()
	logger.Info("competition_moderated", map[string]interface{}{
		"competition_id": id.String(),
		"status":         string(status),
	})

	return s.reload(db, id)
}

// Delete removes the competition row, then queues its poster for removal.
func (s *CompetitionService) Delete(ctx context.Context, id uuid.UUID) (*models.Competition, error) {
	db := s.DB.WithContext(ctx)

	competition, err := s.find(db, id)
	if err != nil {
		return nil, err
	}

	if err := db.Delete(&models.Competition{}, "id = ?", id).Error; err != nil {
		return nil, internalError("failed deleting competition", err)
	}

	s.Cleanup.Enqueue(competition.PosterURL)

	logger.Info("competition_deleted", map[string]interface{}{
		"competition_id": id.String(),
	})
	return competition, nil
}

// Archive hides a competition from the active listing regardless of status.
func (s *CompetitionService) Archive(ctx context.Context, id uuid.UUID) (*models.Competition, error) {
	db := s.DB.WithContext(ctx)

	if _, err := s.find(db, id); err != nil {
		return nil, err
	}

	err := db.Model(&models.Competition{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_archived": true,
			"updated_at":  s.now(),
		}).Error
	if err != nil {
		return nil, internalError("failed archiving competition", err)
	}

	logger.Info("competition_archived", map[string]interface{}{
		"competition_id": id.String(),
	})
	return s.reload(db, id)
}

func (s *CompetitionService) find(db *gorm.DB, id uuid.UUID) (*models.Competition, error) {
	var competition models.Competition
	if err := db.First(&competition, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("competition not found")
		}
		return nil, internalError("failed fetching competition", err)
	}
	return &competition, nil
}

func (s *CompetitionService) reload(db *gorm.DB, id uuid.UUID) (*models.Competition, error) {
	var competition models.Competition
	if err := db.Preload("Category").First(&competition, "id = ?", id).Error; err != nil {
		return nil, internalError("failed loading competition", err)
	}
	return &competition, nil
}

func (s *CompetitionService) ensureCategory(db *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return internalError("failed checking category", err)
	}
	if count == 0 {
		return apperror.ErrCategoryNotFound
	}
	return nil
}

// containsClause builds a case-sensitive substring predicate. LIKE folds
// ASCII case on SQLite, so both dialects use a position function instead.
func (s *CompetitionService) containsClause(column string) string {
	if s.DB.Dialector.Name() == "postgres" {
		return "strpos(" + column + ", ?) > 0"
	}
	return "instr(" + column + ", ?) > 0"
}

// discardPosterOnError queues a freshly stored poster for removal when the
// write it was uploaded for fails.
func (s *CompetitionService) discardPosterOnError(posterURL string, err *error) {
	if *err != nil && posterURL != "" {
		s.Cleanup.Enqueue(posterURL)
	}
}

func applyOptionalFields(competition *models.Competition, in CompetitionInput) {
	if in.ShortDescription != nil {
		competition.ShortDescription = strings.TrimSpace(*in.ShortDescription)
	}
	if in.FullDescription != nil {
		competition.FullDescription = strings.TrimSpace(*in.FullDescription)
	}
	if in.Organizer != nil {
		competition.Organizer = strings.TrimSpace(*in.Organizer)
	}
	if in.EventDate != nil {
		eventDate := in.EventDate.UTC()
		competition.EventDate = &eventDate
	}
	if in.RegistrationLink != nil {
		competition.RegistrationLink = strings.TrimSpace(*in.RegistrationLink)
	}
	if in.ContactPerson != nil {
		competition.ContactPerson = strings.TrimSpace(*in.ContactPerson)
	}
	if in.RegistrationFee != nil {
		fee := strings.TrimSpace(*in.RegistrationFee)
		if fee == "" {
			competition.RegistrationFee = nil
		} else {
			competition.RegistrationFee = &fee
		}
	}
}
