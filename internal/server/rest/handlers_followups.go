package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type followUpRequest struct {
	MemberID   string     `json:"memberId" binding:"required"`
	AssignedTo string     `json:"assignedTo"`
	Notes      string     `json:"notes"`
	DueDate    *time.Time `json:"dueDate"`
}

func (s *Server) handleCreateFollowUp(c *gin.Context) {
	var req followUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	assignedTo := req.AssignedTo
	if assignedTo == "" {
		assignedTo = c.GetString(ctxUserID)
	}
	created, err := s.svc.FollowUps.CreateFollowUp(c.Request.Context(), &models.FollowUp{
		MemberID:   req.MemberID,
		AssignedTo: assignedTo,
		Notes:      req.Notes,
		DueDate:    req.DueDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetFollowUp(c *gin.Context) {
	fu, err := s.svc.FollowUps.GetFollowUp(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fu)
}

func (s *Server) handleMyFollowUps(c *gin.Context) {
	items, err := s.svc.FollowUps.ListAssignedTo(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type followUpUpdateRequest struct {
	AssignedTo string                `json:"assignedTo" binding:"required"`
	Notes      string                `json:"notes"`
	Status     models.FollowUpStatus `json:"status" binding:"required"`
	DueDate    *time.Time            `json:"dueDate"`
}

func (s *Server) handleUpdateFollowUp(c *gin.Context) {
	var req followUpUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	updated, err := s.svc.FollowUps.UpdateFollowUp(c.Request.Context(), &models.FollowUp{
		ID:         c.Param("id"),
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
		Status:     req.Status,
		DueDate:    req.DueDate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleCompleteFollowUp(c *gin.Context) {
	done, err := s.svc.FollowUps.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, done)
}

func (s *Server) handleDeleteFollowUp(c *gin.Context) {
	if err := s.svc.FollowUps.DeleteFollowUp(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
