package handlers

import (
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/middleware"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/internal/services"
	"github.com/silomba/backend/internal/storage"
	"github.com/silomba/backend/pkg/utils"
)

const posterField = "poster"

type CompetitionsHandler struct {
	Competitions   *services.CompetitionService
	Posters        storage.PosterStore
	Audit          *services.AuditService
	PosterMaxBytes int64
}

func NewCompetitionsHandler(competitions *services.CompetitionService, posters storage.PosterStore, audit *services.AuditService, posterMaxBytes int64) *CompetitionsHandler {
	return &CompetitionsHandler{
		Competitions:   competitions,
		Posters:        posters,
		Audit:          audit,
		PosterMaxBytes: posterMaxBytes,
	}
}

func (h *CompetitionsHandler) ListActive(c *fiber.Ctx) error {
	query := services.ActiveQuery{
		Search: c.Query("search"),
		Sort:   strings.TrimSpace(c.Query("sort")),
	}
	if raw := strings.TrimSpace(c.Query("categoryId")); raw != "" {
		categoryID, err := parseUUID(raw)
		if err != nil {
			return apperror.Validation("", "invalid categoryId")
		}
		query.CategoryID = &categoryID
	}

	competitions, err := h.Competitions.ListActive(c.UserContext(), query)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, competitions)
}

func (h *CompetitionsHandler) ListPending(c *fiber.Ctx) error {
	competitions, err := h.Competitions.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, competitions)
}

func (h *CompetitionsHandler) ListArchived(c *fiber.Ctx) error {
	competitions, err := h.Competitions.ListArchived(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, competitions)
}

func (h *CompetitionsHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "competition")
	if err != nil {
		return err
	}

	competition, err := h.Competitions.Get(c.UserContext(), middleware.GetCurrentUser(c), id)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, competition)
}

func (h *CompetitionsHandler) Create(c *fiber.Ctx) error {
	in, err := h.readInput(c)
	if err != nil {
		return err
	}

	result, err := h.Competitions.Create(c.UserContext(), middleware.GetCurrentUser(c), in)
	if err != nil {
		return err
	}

	h.audit(c, "competition.create", result.Competition.ID, map[string]interface{}{
		"title":  result.Competition.Title,
		"status": string(result.InitialStatus),
	})

	message := "competition published"
	if result.Pending() {
		message = "competition submitted and awaiting admin approval"
	}
	return utils.SuccessWithMessage(c, fiber.StatusCreated, message, result.Competition)
}

func (h *CompetitionsHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "competition")
	if err != nil {
		return err
	}

	in, err := h.readInput(c)
	if err != nil {
		return err
	}

	competition, err := h.Competitions.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}

	h.audit(c, "competition.update", competition.ID, map[string]interface{}{
		"poster_replaced": in.PosterURL != "",
	})
	return utils.Success(c, fiber.StatusOK, competition)
}

type updateStatusRequest struct {
	Status string `json:"status" form:"status"`
}

func (h *CompetitionsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "competition")
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	status := models.CompetitionStatus(strings.TrimSpace(req.Status))
	competition, err := h.Competitions.UpdateStatus(c.UserContext(), id, status)
	if err != nil {
		return err
	}

	h.audit(c, "competition.moderate", competition.ID, map[string]interface{}{
		"status": string(status),
	})
	return utils.SuccessWithMessage(c, fiber.StatusOK, fmt.Sprintf("competition status changed to %s", status), competition)
}

func (h *CompetitionsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "competition")
	if err != nil {
		return err
	}

	competition, err := h.Competitions.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}

	h.audit(c, "competition.delete", competition.ID, map[string]interface{}{
		"title": competition.Title,
	})
	return utils.NoContent(c)
}

func (h *CompetitionsHandler) Archive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "competition")
	if err != nil {
		return err
	}

	competition, err := h.Competitions.Archive(c.UserContext(), id)
	if err != nil {
		return err
	}

	h.audit(c, "competition.archive", competition.ID, nil)
	return utils.Success(c, fiber.StatusOK, competition)
}

// readInput maps the request body onto a CompetitionInput and stores an
// attached poster. The stored poster is owned by the service from here on.
func (h *CompetitionsHandler) readInput(c *fiber.Ctx) (services.CompetitionInput, error) {
	var in services.CompetitionInput

	fields, err := bodyFields(c)
	if err != nil {
		return in, err
	}

	in.Title = stringField(fields, "title")
	in.ShortDescription = stringField(fields, "shortDescription")
	in.FullDescription = stringField(fields, "fullDescription")
	in.Organizer = stringField(fields, "organizer")
	in.RegistrationLink = stringField(fields, "registrationLink")
	in.ContactPerson = stringField(fields, "contactPerson")
	in.RegistrationFee = stringField(fields, "registrationFee")

	if in.RegistrationStartDate, err = dateField(fields, "registrationStartDate"); err != nil {
		return in, err
	}
	if in.RegistrationEndDate, err = dateField(fields, "registrationEndDate"); err != nil {
		return in, err
	}
	if in.EventDate, err = dateField(fields, "eventDate"); err != nil {
		return in, err
	}

	if raw, ok := fields["categoryId"]; ok && strings.TrimSpace(raw) != "" {
		categoryID, err := parseUUID(raw)
		if err != nil {
			return in, apperror.ErrCategoryNotFound
		}
		in.CategoryID = &categoryID
	}

	posterURL, err := h.storePoster(c)
	if err != nil {
		return in, err
	}
	in.PosterURL = posterURL

	return in, nil
}

// storePoster validates and saves the uploaded poster. It returns an empty
// URL when the request carries no poster.
func (h *CompetitionsHandler) storePoster(c *fiber.Ctx) (string, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return "", nil
	}

	file, err := c.FormFile(posterField)
	if err != nil {
		return "", nil
	}

	if h.PosterMaxBytes > 0 && file.Size > h.PosterMaxBytes {
		return "", apperror.Validation(apperror.CodeInvalidPoster,
			"poster must not exceed "+humanize.IBytes(uint64(h.PosterMaxBytes)))
	}

	mtype, err := detectPosterType(file)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", apperror.Internal("failed reading poster", err)
	}
	defer src.Close()

	name := storage.NewPosterName(mtype.Extension())
	if err := h.Posters.Save(c.UserContext(), name, src, file.Size, mtype.String()); err != nil {
		return "", apperror.Internal("failed storing poster", err)
	}
	return storage.URLFor(name), nil
}

// detectPosterType sniffs the file content; the client supplied type and
// extension are ignored.
func detectPosterType(file *multipart.FileHeader) (*mimetype.MIME, error) {
	src, err := file.Open()
	if err != nil {
		return nil, apperror.Internal("failed reading poster", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, apperror.Internal("failed reading poster", err)
	}
	if !mtype.Is("image/jpeg") && !mtype.Is("image/png") {
		return nil, apperror.Validation(apperror.CodeInvalidPoster, "poster must be a JPEG or PNG image")
	}
	return mtype, nil
}

func stringField(fields map[string]string, key string) *string {
	value, ok := fields[key]
	if !ok {
		return nil
	}
	return &value
}

// dateField returns nil when key is absent or blank.
func dateField(fields map[string]string, key string) (*time.Time, error) {
	raw, ok := fields[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, apperror.Validation("", "invalid "+key)
	}
	return &parsed, nil
}

func (h *CompetitionsHandler) audit(c *fiber.Ctx, action string, id uuid.UUID, details map[string]interface{}) {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return
	}
	h.Audit.LogAsync(services.AuditEntry{
		ActorID:      &currentUser.ID,
		Action:       action,
		ResourceType: "competition",
		ResourceID:   &id,
		Details:      details,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})
}
