package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/service"
	"portfolioapi/internal/storage"
)

// UploadImage accepts a multipart/form-data upload in the "file" field.
func UploadImage(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		img, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrUnsupportedImage) {
				return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "file must be an image")
			}
			return writeInternal(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(img)
	}
}

// GetImage streams a stored image.
func GetImage(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.Open(c.UserContext(), c.Params("name"))
		if err != nil {
			return imageError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, strconv.Quote(info.ETag))
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, size)
	}
}

// ImageURL returns a presigned download URL.
func ImageURL(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.PresignURL(c.UserContext(), c.Params("name"))
		if err != nil {
			return imageError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// DeleteImage removes a stored image.
func DeleteImage(svc service.ImageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("name")); err != nil {
			return imageError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func imageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidImageName):
		return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "invalid image name")
	case errors.Is(err, storage.ErrObjectNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Image not found")
	default:
		return writeInternal(c, err)
	}
}
