package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/middleware"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func parseIDParam(c *fiber.Ctx, resource string) (uuid.UUID, error) {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("", "invalid "+resource+" id")
	}
	return id, nil
}

func getRequestID(c *fiber.Ctx) string {
	return middleware.GetRequestID(c)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate accepts RFC 3339 timestamps and the plain forms HTML date inputs
// send. Values without a zone are read as UTC.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// bodyFields collects the scalar fields of a multipart or JSON body. Keys that
// were not sent are absent from the map.
func bodyFields(c *fiber.Ctx) (map[string]string, error) {
	fields := map[string]string{}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperror.Validation("", "invalid multipart form")
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		return fields, nil
	}

	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return fields, nil
	}

	var raw map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil || decoder.More() {
		return nil, apperror.Validation("", "invalid request body")
	}
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case map[string]interface{}, []interface{}:
			return nil, apperror.Validation("", fmt.Sprintf("%s must be a scalar value", key))
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return fields, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("", "invalid request body")
	}
	return nil
}
