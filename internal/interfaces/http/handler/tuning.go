package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	tuningapp "github.com/compucar/backend/internal/application/tuning"
)

// TuningHandler handles customer-facing tuning file endpoints
type TuningHandler struct {
	BaseHandler
	tuningService *tuningapp.Service
}

// NewTuningHandler creates a new TuningHandler
func NewTuningHandler(tuningService *tuningapp.Service) *TuningHandler {
	return &TuningHandler{tuningService: tuningService}
}

// Upload accepts a multipart tuning file upload. The part named "file"
// carries the binary; "file_type", "comment" and "modifications"
// (a JSON array of {code,label}) ride alongside as form fields.
func (h *TuningHandler) Upload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field 'file' is required")
		return
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}

	req := tuningapp.UploadFileRequest{
		Filename: fileHeader.Filename,
		FileType: c.PostForm("file_type"),
		Comment:  c.PostForm("comment"),
		Data:     data,
	}
	if mods := c.PostForm("modifications"); mods != "" {
		if err := json.Unmarshal([]byte(mods), &req.Modifications); err != nil {
			h.BadRequest(c, "Field 'modifications' must be a JSON array of {code,label}")
			return
		}
	}

	resp, err := h.tuningService.Upload(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the authenticated customer's files
func (h *TuningHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req tuningapp.ListFilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.tuningService.List(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, &page)
}

// Get returns one of the customer's files
func (h *TuningHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.tuningService.Get(c.Request.Context(), userID, fileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DownloadOriginal returns a presigned link to the uploaded file
func (h *TuningHandler) DownloadOriginal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.tuningService.DownloadOriginal(c.Request.Context(), userID, fileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DownloadModified returns a presigned link to the processed file
func (h *TuningHandler) DownloadModified(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.tuningService.DownloadModified(c.Request.Context(), userID, fileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
