package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carstash/carstash-go/internal/middleware"
	"github.com/carstash/carstash-go/internal/model"
	"github.com/carstash/carstash-go/internal/service"
)

// CarHandler handles HTTP requests for car listing operations. All
// routes sit behind the JWT gate; the caller identity always comes
// from the verified request context.
type CarHandler struct {
	service   *service.CarService
	maxMemory int64
}

// NewCarHandler creates a new CarHandler. maxMemory caps the in-memory
// portion of multipart parsing.
func NewCarHandler(svc *service.CarService, maxMemory int64) *CarHandler {
	return &CarHandler{service: svc, maxMemory: maxMemory}
}

// HandleCreate handles POST /cars/create requests (multipart form with
// title, description, tags, and up to the configured number of files
// under the "images" field).
func (h *CarHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := model.CreateCarRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if vals, present := r.MultipartForm.Value["tags"]; present {
		req.Tags = parseTags(vals)
	}

	files, closeFiles, err := openUploads(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	defer closeFiles()

	car, err := h.service.Create(r.Context(), ownerID, req, files)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, car)
}

// HandleList handles GET /cars/list requests.
func (h *CarHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	cars, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if cars == nil {
		cars = []model.Car{}
	}

	writeJSON(w, http.StatusOK, cars)
}

// HandleSearch handles GET /cars/search?keyword= requests. An empty or
// absent keyword matches all of the caller's cars.
func (h *CarHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	keyword := r.URL.Query().Get("keyword")

	cars, err := h.service.Search(r.Context(), ownerID, keyword)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if cars == nil {
		cars = []model.Car{}
	}

	writeJSON(w, http.StatusOK, cars)
}

// HandleDetail handles GET /cars/detail/{id} requests. A car owned by
// a different caller yields the same 404 as a missing one.
func (h *CarHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, err := carID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid car id"))
		return
	}

	car, err := h.service.Detail(r.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, service.ErrCarNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, car)
}

// HandleUpdate handles PUT /cars/update/{id} requests (multipart form;
// omitted fields keep their stored values, and the image list is
// replaced only when new files are uploaded).
func (h *CarHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, err := carID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid car id"))
		return
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var req model.UpdateCarRequest
	if vals, present := r.MultipartForm.Value["title"]; present && len(vals) > 0 {
		req.Title = &vals[0]
	}
	if vals, present := r.MultipartForm.Value["description"]; present && len(vals) > 0 {
		req.Description = &vals[0]
	}
	if vals, present := r.MultipartForm.Value["tags"]; present {
		req.Tags = parseTags(vals)
	}

	files, closeFiles, err := openUploads(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	defer closeFiles()

	car, err := h.service.Update(r.Context(), ownerID, id, req, files)
	if err != nil {
		if errors.Is(err, service.ErrCarNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, car)
}

// HandleDelete handles DELETE /cars/delete/{id} requests. The delete is
// idempotent: an id that no longer exists still reports success.
func (h *CarHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, err := carID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid car id"))
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, id); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteCarResponse{
		Message: "car deleted",
		ID:      id,
	})
}

func carID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseTags flattens repeated and comma-separated tag values into one
// list, trimming whitespace and dropping empties. The result is never
// nil once the tags field was present on the form.
func parseTags(vals []string) []string {
	tags := []string{}
	for _, v := range vals {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// openUploads opens every file under the "images" multipart field. The
// returned closer releases all opened files.
func openUploads(r *http.Request) ([]service.UploadedFile, func(), error) {
	headers := r.MultipartForm.File["images"]

	files := make([]service.UploadedFile, 0, len(headers))
	var opened []io.Closer
	closeFiles := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeFiles()
			return nil, func() {}, errors.New("reading uploaded file " + fh.Filename)
		}
		opened = append(opened, f)
		files = append(files, service.UploadedFile{
			Name: fh.Filename,
			Data: f,
			Size: fh.Size,
		})
	}

	return files, closeFiles, nil
}
