package handlers

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/services"
	"github.com/silomba/backend/pkg/utils"
)

type AuditHandler struct {
	Audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

// Export downloads the moderation and administration trail as CSV or JSON.
func (h *AuditHandler) Export(c *fiber.Ctx) error {
	format := strings.ToLower(strings.TrimSpace(c.Query("format", "csv")))
	if format != "csv" && format != "json" {
		return apperror.Validation("", "format must be csv or json")
	}

	query := services.AuditQuery{
		Action:       strings.TrimSpace(c.Query("action")),
		ResourceType: strings.TrimSpace(c.Query("resourceType")),
		Limit:        c.QueryInt("limit", 0),
	}
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := parseDate(raw)
		if err != nil {
			return apperror.Validation("", "invalid since")
		}
		query.Since = &since
	}

	logs, err := h.Audit.List(c.UserContext(), query)
	if err != nil {
		return err
	}

	if format == "json" {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "audit-log.json"))
		return utils.Success(c, fiber.StatusOK, logs)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "audit-log.csv"))

	writer := csv.NewWriter(c.Response().BodyWriter())
	_ = writer.Write([]string{"Timestamp", "Actor ID", "Action", "Resource Type", "Resource ID", "IP Address", "Details"})

	for _, log := range logs {
		actorID := ""
		if log.ActorID != nil {
			actorID = log.ActorID.String()
		}
		resourceID := ""
		if log.ResourceID != nil {
			resourceID = log.ResourceID.String()
		}

		detailStr := ""
		if log.Details != nil {
			parts := make([]string, 0, len(log.Details))
			for k, v := range log.Details {
				parts = append(parts, fmt.Sprintf("%s=%v", k, v))
			}
			sort.Strings(parts)
			detailStr = strings.Join(parts, "; ")
		}

		_ = writer.Write([]string{
			log.CreatedAt.Format(time.RFC3339),
			actorID,
			log.Action,
			log.ResourceType,
			resourceID,
			log.IPAddress,
			detailStr,
		})
	}

	writer.Flush()
	return writer.Error()
}
