package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shepherdhq/memberd/internal/logging"
	"github.com/shepherdhq/memberd/internal/server/auth"
	"github.com/shepherdhq/memberd/internal/server/config"
	"github.com/shepherdhq/memberd/internal/server/models"
	"github.com/shepherdhq/memberd/internal/server/services"
)

const (
	loginRateLimitMax    = 10
	loginRateLimitWindow = time.Minute
	shutdownTimeout      = 10 * time.Second
)

// Services bundles the service layer the HTTP surface is built on.
type Services struct {
	Auth        *services.AuthService
	Members     *services.MemberService
	Zones       *services.ZoneService
	Cells       *services.CellService
	Departments *services.DepartmentService
	FollowUps   *services.FollowUpService
	Export      *services.ExportService
}

type Server struct {
	engine *gin.Engine
	svc    Services
	issuer *auth.Issuer
	log    logging.Logger
	addr   string
}

func NewServer(cfg *config.Config, log logging.Logger, issuer *auth.Issuer, svc Services) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: gin.New(),
		svc:    svc,
		issuer: issuer,
		log:    log,
		addr:   cfg.Addr,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestLog())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	s.engine.Use(cors.New(corsCfg))

	s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api/v1")

	// public credential endpoints, throttled per IP
	public := api.Group("/auth")
	public.Use(LoginRateLimit(loginRateLimitMax, loginRateLimitWindow))
	public.POST("/login", s.handleLogin)
	public.POST("/refresh", s.handleRefresh)
	public.POST("/logout", s.handleLogout)
	public.POST("/forgot-password", s.handleForgotPassword)
	public.POST("/reset-password", s.handleResetPassword)

	authed := api.Group("")
	authed.Use(BearerAuth(s.issuer))

	authed.POST("/auth/change-password", s.handleChangePassword)

	adminOnly := RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	superOnly := RequireRoles(models.RoleSuperAdmin)

	users := authed.Group("/users")
	users.POST("", superOnly, s.handleRegister)
	users.GET("", adminOnly, s.handleListUsers)
	users.GET("/:id", adminOnly, s.handleGetUser)
	users.PUT("/:id", superOnly, s.handleUpdateUser)
	users.DELETE("/:id", superOnly, s.handleDeleteUser)

	canManageMembers := RequireRoles(models.RoleSuperAdmin, models.RoleAdmin,
		models.RoleZonalCoordinator, models.RoleCellLeader)

	members := authed.Group("/members")
	members.GET("", s.handleListMembers)
	members.GET("/duplicates", s.handleFindDuplicates)
	members.GET("/export", adminOnly, s.handleExportMembers)
	members.POST("", canManageMembers, s.handleCreateMember)
	members.GET("/:id", s.handleGetMember)
	members.PUT("/:id", canManageMembers, s.handleUpdateMember)
	members.DELETE("/:id", adminOnly, s.handleDeleteMember)
	members.POST("/:id/attendance", canManageMembers, s.handleMarkAttendance)
	members.GET("/:id/follow-ups", s.handleMemberFollowUps)

	zones := authed.Group("/zones")
	zones.GET("", s.handleListZones)
	zones.GET("/:id", s.handleGetZone)
	zones.POST("", adminOnly, s.handleCreateZone)
	zones.PUT("/:id", adminOnly, s.handleUpdateZone)
	zones.DELETE("/:id", adminOnly, s.handleDeleteZone)

	cells := authed.Group("/cells")
	cells.GET("", s.handleListCells)
	cells.GET("/:id", s.handleGetCell)
	cells.POST("", adminOnly, s.handleCreateCell)
	cells.PUT("/:id", adminOnly, s.handleUpdateCell)
	cells.DELETE("/:id", adminOnly, s.handleDeleteCell)

	departments := authed.Group("/departments")
	departments.GET("", s.handleListDepartments)
	departments.GET("/:id", s.handleGetDepartment)
	departments.POST("", adminOnly, s.handleCreateDepartment)
	departments.PUT("/:id", adminOnly, s.handleUpdateDepartment)
	departments.DELETE("/:id", adminOnly, s.handleDeleteDepartment)
	departments.POST("/:id/members/:memberId", adminOnly, s.handleAssignDepartmentMember)
	departments.DELETE("/:id/members/:memberId", adminOnly, s.handleUnassignDepartmentMember)

	canFollowUp := RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleFollowUpTeam)

	followUps := authed.Group("/follow-ups")
	followUps.GET("/assigned", s.handleMyFollowUps)
	followUps.POST("", canFollowUp, s.handleCreateFollowUp)
	followUps.GET("/:id", s.handleGetFollowUp)
	followUps.PUT("/:id", canFollowUp, s.handleUpdateFollowUp)
	followUps.POST("/:id/complete", canFollowUp, s.handleCompleteFollowUp)
	followUps.DELETE("/:id", canFollowUp, s.handleDeleteFollowUp)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
