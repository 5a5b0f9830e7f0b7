package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
)

// Handlers for one record collection. label is the singular resource name used in
// not-found messages ("Experience", "Project").

// ListRecords returns every record of the collection.
func ListRecords[R, C, U any](svc service.Records[R, C, U]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeInternal(c, err)
		}
		return c.JSON(items)
	}
}

// GetRecord returns a single record by id.
func GetRecord[R, C, U any](svc service.Records[R, C, U], label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return recordError(c, err, label)
		}
		return c.JSON(rec)
	}
}

// CreateRecord validates the body as a full input and stores a new record.
func CreateRecord[R, C, U any](svc service.Records[R, C, U]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in C
		if err := bind(c.Body(), &in); err != nil {
			return bindError(c, err)
		}
		rec, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeInternal(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// ReplaceRecord handles PUT: the body must be a complete, valid input.
// A missing id answers 404 before the body is looked at.
func ReplaceRecord[R, C, U any](svc service.Records[R, C, U], label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return updateExisting(c, svc, label, func() (U, error) {
			var in C
			var patch U
			if err := bind(c.Body(), &in); err != nil {
				return patch, err
			}
			// Same body as a patch; every field is present so every field is written.
			err := bind(c.Body(), &patch)
			return patch, err
		})
	}
}

// PatchRecord handles PATCH: only the fields present in the body are written.
func PatchRecord[R, C, U any](svc service.Records[R, C, U], label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return updateExisting(c, svc, label, func() (U, error) {
			var patch U
			err := bind(c.Body(), &patch)
			return patch, err
		})
	}
}

// DeleteRecord removes a record. Missing ids still answer 204.
func DeleteRecord[R, C, U any](svc service.Records[R, C, U]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			if errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
			}
			return writeInternal(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func updateExisting[R, C, U any](c *fiber.Ctx, svc service.Records[R, C, U], label string, decode func() (U, error)) error {
	ctx := c.UserContext()
	id := c.Params("id")
	if _, err := svc.Get(ctx, id); err != nil {
		return recordError(c, err, label)
	}
	patch, err := decode()
	if err != nil {
		return bindError(c, err)
	}
	rec, err := svc.Update(ctx, id, patch)
	if err != nil {
		return recordError(c, err, label)
	}
	return c.JSON(rec)
}

func recordError(c *fiber.Ctx, err error, label string) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", label+" not found")
	default:
		return writeInternal(c, err)
	}
}

func bindError(c *fiber.Ctx, err error) error {
	var fields fieldErrors
	if errors.As(err, &fields) {
		return writeValidationError(c, fields)
	}
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", errMalformedBody.Error())
}
