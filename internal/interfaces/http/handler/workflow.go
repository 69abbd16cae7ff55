package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	mfgapp "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/interfaces/http/middleware"
)

// WorkflowHandler handles manufacturing workflow API endpoints
type WorkflowHandler struct {
	BaseHandler
	workflowService *mfgapp.WorkflowService
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(workflowService *mfgapp.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
	}
}

// TransitionRequest represents a request to move a record to a new status
type TransitionRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
	Notes        string `json:"notes" binding:"max=1000"`
}

// QualityCheckRequest represents a quality check outcome
type QualityCheckRequest struct {
	Passed bool   `json:"passed"`
	Notes  string `json:"notes" binding:"max=1000"`
}

// ApprovalRequest represents a final approval decision
type ApprovalRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes" binding:"max=1000"`
}

// CancelRequest represents a request to cancel a record
type CancelRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// AvailableTransitions returns the statuses a record may move to next
func (h *WorkflowHandler) AvailableTransitions(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}

	transitions, err := h.workflowService.AvailableTransitions(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transitions)
}

// Transition moves a record to an explicitly named status
func (h *WorkflowHandler) Transition(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	target := manufacturing.ManufacturingStatus(req.TargetStatus)
	if !target.IsValid() {
		h.BadRequest(c, "Unknown target status")
		return
	}

	record, err := h.workflowService.Transition(c.Request.Context(), recordID, target, actor, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// QualityCheck records a quality check outcome. A pass advances the
// record to final approval; a failure sends it back to production.
func (h *WorkflowHandler) QualityCheck(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req QualityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	record, err := h.workflowService.PerformQualityCheck(c.Request.Context(), recordID, req.Passed, actor, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Approval records a final approval decision. An approval completes the
// record; a rejection sends it back to quality check.
func (h *WorkflowHandler) Approval(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	record, err := h.workflowService.PerformFinalApproval(c.Request.Context(), recordID, req.Approved, actor, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Cancel aborts a record from any non-terminal status
func (h *WorkflowHandler) Cancel(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	record, err := h.workflowService.Cancel(c.Request.Context(), recordID, actor, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// History returns the full audit trail of a record, oldest first
func (h *WorkflowHandler) History(c *gin.Context) {
	recordID, ok := h.parseID(c)
	if !ok {
		return
	}

	history, err := h.workflowService.History(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

func (h *WorkflowHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return uuid.Nil, false
	}
	return recordID, true
}

func (h *WorkflowHandler) requireActor(c *gin.Context) (manufacturing.Actor, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return manufacturing.Actor{}, false
	}
	return manufacturing.Actor{UserID: userID, UserName: getUserName(c)}, true
}
