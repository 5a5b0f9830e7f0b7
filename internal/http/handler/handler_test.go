package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/logging"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository/postgres"
	"portfolioapi/internal/service"
	serviceMocks "portfolioapi/internal/service/mocks"
	"portfolioapi/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(postgres.NewDocumentPostgres(db)))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListRecords(t *testing.T) {
	mockSvc := new(serviceMocks.MockProjectService)
	var svc service.ProjectService = mockSvc
	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Get("/projects", ListRecords(svc))

	t.Run("success", func(t *testing.T) {
		items := []model.Project{{ID: uuid.New().String(), Title: "Portfolio"}}
		mockSvc.On("List", mock.Anything).Return(items, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/projects", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result []model.Project
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 1)
		assert.Equal(t, "Portfolio", result[0].Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]model.Project{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/projects", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `[]`, string(b))
	})

	t.Run("service error", func(t *testing.T) {
		var logs bytes.Buffer
		logging.SetOutput(&logs)
		defer logging.SetOutput(os.Stdout)
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("store down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.Header.Set("X-Request-ID", "rid-500")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Code)
		assert.NotContains(t, body.Error, "store down")

		var event map[string]any
		require.NoError(t, json.Unmarshal(logs.Bytes(), &event))
		assert.Equal(t, "request_failed", event["event"])
		assert.Equal(t, "error", event["level"])
		assert.Equal(t, "store down", event["error"])
		assert.Equal(t, "rid-500", event["request_id"])
	})
}

func TestGetRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	var svc service.ExperienceService = mockSvc
	app := fiber.New()
	app.Get("/experiences/:id", GetRecord(svc, "Experience"))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).Return(&model.Experience{ID: id, Title: "Engineer"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got model.Experience
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, id, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "missing").Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/missing", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "Experience not found", body.Error)
		assert.Equal(t, "NOT_FOUND", body.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("boom")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/experiences/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	mockSvc.AssertExpectations(t)
}

func TestCreateRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	var svc service.ExperienceService = mockSvc
	app := fiber.New()
	app.Post("/experiences/create", CreateRecord(svc))

	valid := `{"title":"Engineer","company":"Acme","duration":"2020-2023","description":["built things"],"technologies":["Go"],"image":"img.png"}`

	t.Run("success", func(t *testing.T) {
		in := model.ExperienceInput{
			Title: "Engineer", Company: "Acme", Duration: "2020-2023",
			Description: []string{"built things"}, Technologies: []string{"Go"}, Image: "img.png",
		}
		created := &model.Experience{ID: "new-id", Title: "Engineer", CreatedAt: time.Now().UTC()}
		mockSvc.On("Create", mock.Anything, in).Return(created, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/experiences/create", valid))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Experience
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, "new-id", got.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		body := strings.Replace(strings.Replace(valid, `"Engineer"`, `"  Engineer "`, 1), `["Go"]`, `[" Go "]`, 1)
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in model.ExperienceInput) bool {
			return in.Title == "Engineer" && len(in.Technologies) == 1 && in.Technologies[0] == "Go"
		})).Return(&model.Experience{ID: "new-id"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/experiences/create", body))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("echoed server fields are ignored", func(t *testing.T) {
		body := `{"id":"client-id","created_at":"2020-01-01T00:00:00Z","updated_at":null,` + valid[1:]
		mockSvc.On("Create", mock.Anything, mock.AnythingOfType("model.ExperienceInput")).
			Return(&model.Experience{ID: "new-id"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/experiences/create", body))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	tests := []struct {
		name   string
		body   string
		status int
		field  string
		msg    string
	}{
		{"missing fields", `{"title":"Engineer"}`, http.StatusBadRequest, "company", "this field is required"},
		{"blank title", strings.Replace(valid, `"Engineer"`, `""`, 1), http.StatusBadRequest, "title", "this field is required"},
		{"whitespace title", strings.Replace(valid, `"Engineer"`, `"   "`, 1), http.StatusBadRequest, "title", "this field is required"},
		{"title too long", strings.Replace(valid, `"Engineer"`, `"`+strings.Repeat("a", 201)+`"`, 1), http.StatusBadRequest, "title", "ensure this field has no more than 200 characters"},
		{"wrong type", strings.Replace(valid, `["Go"]`, `"Go"`, 1), http.StatusBadRequest, "technologies", "expected a list"},
		{"unknown field", `{"salary":1,` + valid[1:], http.StatusBadRequest, "salary", "unknown field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.Test(jsonRequest(http.MethodPost, "/experiences/create", tt.body))

			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, "VALIDATION_ERROR", body.Code)
			assert.Equal(t, tt.msg, body.Fields[tt.field])
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/experiences/create", `{"title":`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("store down")).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/experiences/create", valid))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestReplaceRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockProjectService)
	var svc service.ProjectService = mockSvc
	app := fiber.New()
	app.Put("/projects/update/:id", ReplaceRecord(svc, "Project"))

	valid := `{"title":"Site","description":"A site","image":"site.png","technologies":["Go"],"category":["web"]}`

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Project{ID: id}, nil).Once()
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(p model.ProjectPatch) bool {
			return p.Title != nil && *p.Title == "Site" && p.Category != nil && len(*p.Category) == 1
		})).Return(&model.Project{ID: id, Title: "Site"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/projects/update/"+id, valid))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got model.Project
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, "Site", got.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing project is not mutated", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/projects/update/"+id, valid))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Project not found", decodeError(t, resp).Error)
		mockSvc.AssertNotCalled(t, "Update", mock.Anything, id, mock.Anything)
	})

	t.Run("partial body rejected", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Project{ID: id}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/projects/update/"+id, `{"title":"Only"}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Contains(t, body.Fields, "description")
		mockSvc.AssertNotCalled(t, "Update", mock.Anything, id, mock.Anything)
	})

	t.Run("missing project answers 404 whatever the body", func(t *testing.T) {
		for _, body := range []string{`{"title":"x"}`, `{}`} {
			mockSvc.On("Get", mock.Anything, "missing").Return(nil, service.ErrNotFound).Once()

			resp, _ := app.Test(jsonRequest(http.MethodPut, "/projects/update/missing", body))

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "Project not found", decodeError(t, resp).Error)
		}
		mockSvc.AssertNotCalled(t, "Update", mock.Anything, "missing", mock.Anything)
	})
}

func TestPatchRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockProjectService)
	var svc service.ProjectService = mockSvc
	app := fiber.New()
	app.Patch("/projects/update/:id", PatchRecord(svc, "Project"))

	id := uuid.New().String()

	t.Run("only present fields are sent", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).Return(&model.Project{ID: id}, nil).Once()
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(p model.ProjectPatch) bool {
			return p.Title != nil && *p.Title == "Renamed" && p.Description == nil && p.Technologies == nil
		})).Return(&model.Project{ID: id, Title: "Renamed"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/projects/update/"+id, `{"title":"Renamed"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("blank value rejected", func(t *testing.T) {
		for _, body := range []string{`{"title":""}`, `{"title":"   "}`, `{"description":" \t"}`} {
			mockSvc.On("Get", mock.Anything, id).Return(&model.Project{ID: id}, nil).Once()

			resp, _ := app.Test(jsonRequest(http.MethodPatch, "/projects/update/"+id, body))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
			fields := decodeError(t, resp).Fields
			assert.Len(t, fields, 1)
			for _, msg := range fields {
				assert.Equal(t, "this field may not be blank", msg)
			}
		}
	})

	t.Run("deleted between check and update", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "gone").Return(&model.Project{ID: "gone"}, nil).Once()
		mockSvc.On("Update", mock.Anything, "gone", mock.Anything).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/projects/update/gone", `{"title":"x"}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockExperienceService)
	var svc service.ExperienceService = mockSvc
	app := fiber.New()
	app.Delete("/experiences/delete/:id", DeleteRecord(svc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/experiences/delete/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/experiences/delete/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockImageService)
	app := fiber.New()
	app.Post("/images", UploadImage(mockSvc))

	newUpload := func(t *testing.T, contentType string) *http.Request {
		t.Helper()
		body := new(bytes.Buffer)
		writer := multipart.NewWriter(body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
		h.Set("Content-Type", contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		part.Write([]byte("png bytes"))
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/images", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	t.Run("success", func(t *testing.T) {
		img := &model.Image{Key: "k.png", URL: "/api/images/k.png", Size: 9, ContentType: "image/png"}
		mockSvc.On("Upload", mock.Anything, mock.Anything, "avatar.png", "image/png", int64(9)).Return(img, nil).Once()

		resp, _ := app.Test(newUpload(t, "image/png"))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var got model.Image
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, "/api/images/k.png", got.URL)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not an image", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.Anything, "avatar.png", "text/plain", int64(9)).
			Return(nil, service.ErrUnsupportedImage).Once()

		resp, _ := app.Test(newUpload(t, "text/plain"))

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/images", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Code)
	})
}

func TestGetImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockImageService)
	app := fiber.New()
	app.Get("/images/:name/url", ImageURL(mockSvc))
	app.Get("/images/:name", GetImage(mockSvc))

	t.Run("streams content", func(t *testing.T) {
		info := storage.ObjectInfo{Key: "images/a.png", Size: 3, ContentType: "image/png"}
		mockSvc.On("Open", mock.Anything, "a.png").Return(io.NopCloser(strings.NewReader("abc")), info, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/images/a.png", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "abc", string(b))
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Open", mock.Anything, "b.png").Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/images/b.png", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Image not found", decodeError(t, resp).Error)
	})

	t.Run("presigned url", func(t *testing.T) {
		mockSvc.On("PresignURL", mock.Anything, "a.png").Return("https://minio.local/signed", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/images/a.png/url", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "https://minio.local/signed", body["url"])
	})

	mockSvc.AssertExpectations(t)
}

func TestDeleteImage(t *testing.T) {
	mockSvc := new(serviceMocks.MockImageService)
	app := fiber.New()
	app.Delete("/images/:name", DeleteImage(mockSvc))

	mockSvc.On("Delete", mock.Anything, "a.png").Return(nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/images/a.png", nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	mockSvc.On("Delete", mock.Anything, "bad").Return(service.ErrInvalidImageName).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/images/bad", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
