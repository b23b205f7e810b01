package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tuningapp "github.com/compucar/backend/internal/application/tuning"
)

// TuningAdminHandler handles the admin side of the tuning workflow.
// Every mutation records the acting admin in the audit log.
type TuningAdminHandler struct {
	BaseHandler
	tuningService *tuningapp.Service
}

// NewTuningAdminHandler creates a new TuningAdminHandler
func NewTuningAdminHandler(tuningService *tuningapp.Service) *TuningAdminHandler {
	return &TuningAdminHandler{tuningService: tuningService}
}

func adminActor(c *gin.Context) *uuid.UUID {
	id, err := getUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// List returns the admin queue for one workflow status
func (h *TuningAdminHandler) List(c *gin.Context) {
	var req tuningapp.AdminListFilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.tuningService.AdminList(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, &page)
}

// Counts returns per-status file counts for the admin dashboard
func (h *TuningAdminHandler) Counts(c *gin.Context) {
	resp, err := h.tuningService.Counts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns any file with owner and notes included
func (h *TuningAdminHandler) Get(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.tuningService.AdminGet(c.Request.Context(), fileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Audit returns a file's append-only audit trail
func (h *TuningAdminHandler) Audit(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	resp, err := h.tuningService.Audit(c.Request.Context(), fileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StartProcessing moves a file to PENDING
func (h *TuningAdminHandler) StartProcessing(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req tuningapp.StartProcessingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tuningService.StartProcessing(c.Request.Context(), fileID, adminActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetEstimatedTime sets or revises the processing estimate
func (h *TuningAdminHandler) SetEstimatedTime(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req tuningapp.SetEstimatedTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tuningService.SetEstimatedTime(c.Request.Context(), fileID, adminActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeStatus moves a file along the workflow
func (h *TuningAdminHandler) ChangeStatus(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req tuningapp.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tuningService.ChangeStatus(c.Request.Context(), fileID, adminActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetPrice sets the processing price
func (h *TuningAdminHandler) SetPrice(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req tuningapp.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tuningService.SetPrice(c.Request.Context(), fileID, adminActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetPaymentStatus flips the payment flag
func (h *TuningAdminHandler) SetPaymentStatus(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req tuningapp.SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tuningService.SetPaymentStatus(c.Request.Context(), fileID, adminActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetNotes replaces the internal admin notes
func (h *TuningAdminHandler) SetNotes(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req tuningapp.SetAdminNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.tuningService.SetAdminNotes(c.Request.Context(), fileID, adminActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AttachModifiedFile uploads the processed output; the file
// transitions to READY as a side effect
func (h *TuningAdminHandler) AttachModifiedFile(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
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

	req := tuningapp.AttachModifiedFileRequest{
		Filename: fileHeader.Filename,
		Data:     data,
	}

	resp, err := h.tuningService.AttachModifiedFile(c.Request.Context(), fileID, adminActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a file and its stored objects
func (h *TuningAdminHandler) Delete(c *gin.Context) {
	fileID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	if err := h.tuningService.Delete(c.Request.Context(), fileID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
