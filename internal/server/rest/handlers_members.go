package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shepherdhq/memberd/internal/server/models"
)

type memberRequest struct {
	Name             string     `json:"name" binding:"required"`
	Email            *string    `json:"email"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Gender           string     `json:"gender"`
	ZoneID           string     `json:"zoneId" binding:"required"`
	CellID           string     `json:"cellId" binding:"required"`
	ConversionStatus string     `json:"conversionStatus"`
	SundayAttendance int        `json:"sundayAttendance"`
	FirstVisit       *time.Time `json:"firstVisit"`
	LastVisit        *time.Time `json:"lastVisit"`
	ConversionDate   *time.Time `json:"conversionDate"`
	PrayerRequest    string     `json:"prayerRequest"`
	Interests        []string   `json:"interests"`
	EducationLevel   string     `json:"educationLevel"`
	AgeRange         string     `json:"ageRange"`
	BirthDate        *time.Time `json:"birthDate"`
}

func (r *memberRequest) toModel() *models.Member {
	m := &models.Member{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		Gender:           r.Gender,
		ZoneID:           r.ZoneID,
		CellID:           r.CellID,
		ConversionStatus: models.ConversionStatus(r.ConversionStatus),
		SundayAttendance: r.SundayAttendance,
		ConversionDate:   r.ConversionDate,
		PrayerRequest:    r.PrayerRequest,
		Interests:        r.Interests,
		EducationLevel:   r.EducationLevel,
		AgeRange:         r.AgeRange,
		BirthDate:        r.BirthDate,
	}
	if r.FirstVisit != nil {
		m.FirstVisit = *r.FirstVisit
	}
	if r.LastVisit != nil {
		m.LastVisit = *r.LastVisit
	}
	return m
}

func (s *Server) handleCreateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	created, err := s.svc.Members.CreateMember(c.Request.Context(), req.toModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetMember(c *gin.Context) {
	detail, err := s.svc.Members.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// memberFilterFromQuery reads list/export filters off the query string.
func memberFilterFromQuery(c *gin.Context) models.MemberFilter {
	filter := models.MemberFilter{
		Status:           models.MemberStatus(c.Query("status")),
		ConversionStatus: models.ConversionStatus(c.Query("conversionStatus")),
		ZoneID:           c.Query("zoneId"),
		CellID:           c.Query("cellId"),
		Gender:           c.Query("gender"),
		AgeRange:         c.Query("ageRange"),
		Search:           c.Query("search"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = v
	}
	if t, err := time.Parse(time.RFC3339, c.Query("firstVisitStart")); err == nil {
		filter.FirstVisitStart = &t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("firstVisitEnd")); err == nil {
		filter.FirstVisitEnd = &t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("lastVisitStart")); err == nil {
		filter.LastVisitStart = &t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("lastVisitEnd")); err == nil {
		filter.LastVisitEnd = &t
	}
	return filter
}

func (s *Server) handleListMembers(c *gin.Context) {
	page, err := s.svc.Members.ListMembers(c.Request.Context(), memberFilterFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleUpdateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}
	member := req.toModel()
	member.ID = c.Param("id")
	updated, err := s.svc.Members.UpdateMember(c.Request.Context(), member)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteMember(c *gin.Context) {
	if err := s.svc.Members.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMarkAttendance(c *gin.Context) {
	updated, err := s.svc.Members.MarkAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleFindDuplicates(c *gin.Context) {
	matches, err := s.svc.Members.FindDuplicates(c.Request.Context(), c.Query("phone"), c.Query("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (s *Server) handleExportMembers(c *gin.Context) {
	url, err := s.svc.Export.ExportMembers(c.Request.Context(), memberFilterFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) handleMemberFollowUps(c *gin.Context) {
	items, err := s.svc.FollowUps.ListForMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
