package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type zoneRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	CoordinatorID string `json:"coordinatorId" binding:"required"`
}

func (s *Server) handleCreateZone(c *gin.Context) {
	var req zoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	created, err := s.svc.Zones.CreateZone(c.Request.Context(), &models.Zone{
		Name:          req.Name,
		Description:   req.Description,
		CoordinatorID: req.CoordinatorID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetZone(c *gin.Context) {
	detail, err := s.svc.Zones.GetZone(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleListZones(c *gin.Context) {
	zones, err := s.svc.Zones.ListZones(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": zones})
}

func (s *Server) handleUpdateZone(c *gin.Context) {
	var req zoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	updated, err := s.svc.Zones.UpdateZone(c.Request.Context(), &models.Zone{
		ID:            c.Param("id"),
		Name:          req.Name,
		Description:   req.Description,
		CoordinatorID: req.CoordinatorID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteZone(c *gin.Context) {
	if err := s.svc.Zones.DeleteZone(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type cellRequest struct {
	Name     string `json:"name" binding:"required"`
	LeaderID string `json:"leaderId" binding:"required"`
	ZoneID   string `json:"zoneId" binding:"required"`
}

func (s *Server) handleCreateCell(c *gin.Context) {
	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	created, err := s.svc.Cells.CreateCell(c.Request.Context(), &models.Cell{
		Name:     req.Name,
		LeaderID: req.LeaderID,
		ZoneID:   req.ZoneID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetCell(c *gin.Context) {
	cell, err := s.svc.Cells.GetCell(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cell)
}

func (s *Server) handleListCells(c *gin.Context) {
	cells, err := s.svc.Cells.ListCells(c.Request.Context(), c.Query("zoneId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cells})
}

func (s *Server) handleUpdateCell(c *gin.Context) {
	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	updated, err := s.svc.Cells.UpdateCell(c.Request.Context(), &models.Cell{
		ID:       c.Param("id"),
		Name:     req.Name,
		LeaderID: req.LeaderID,
		ZoneID:   req.ZoneID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteCell(c *gin.Context) {
	if err := s.svc.Cells.DeleteCell(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type departmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) handleCreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	created, err := s.svc.Departments.CreateDepartment(c.Request.Context(), &models.Department{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetDepartment(c *gin.Context) {
	dept, err := s.svc.Departments.GetDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (s *Server) handleListDepartments(c *gin.Context) {
	depts, err := s.svc.Departments.ListDepartments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": depts})
}

func (s *Server) handleUpdateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	updated, err := s.svc.Departments.UpdateDepartment(c.Request.Context(), &models.Department{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteDepartment(c *gin.Context) {
	if err := s.svc.Departments.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAssignDepartmentMember(c *gin.Context) {
	err := s.svc.Departments.AssignMember(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUnassignDepartmentMember(c *gin.Context) {
	err := s.svc.Departments.UnassignMember(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
