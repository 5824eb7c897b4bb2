package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
)

// Handlers groups every API handler mounted by RegisterRoutes.
type Handlers struct {
	Auth          *AuthHandler
	Faculty       *FacultyHandler
	Batches       *BatchHandler
	Substitutions *SubstitutionHandler
	Scheduling    *SchedulingHandler
	Students      *StudentHandler
	Attendance    *AttendanceHandler
	Activity      *ActivityHandler
	Users         *UserHandler
}

// RegisterRoutes mounts the API on group. Writes are admin only; faculty
// accounts may read their batches and record attendance.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	group.POST("/auth/login", h.Auth.Login)

	authed := group.Group("")
	authed.Use(middleware.JWT(tokens))

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)
	admin := middleware.AdminOnly()

	authed.GET("/auth/me", anyRole, h.Auth.Me)

	faculty := authed.Group("/faculty", admin)
	faculty.GET("", h.Faculty.List)
	faculty.POST("", h.Faculty.Create)
	faculty.GET("/:id", h.Faculty.Get)
	faculty.PUT("/:id", h.Faculty.Update)
	faculty.DELETE("/:id", h.Faculty.Delete)
	faculty.GET("/:id/availability", h.Faculty.Availability)
	faculty.PUT("/:id/availability", h.Faculty.SetAvailability)
	authed.GET("/skills", admin, h.Faculty.Skills)

	authed.GET("/batches", anyRole, h.Batches.List)
	batches := authed.Group("/batches", admin)
	batches.POST("", h.Batches.Create)
	batches.GET("/active-students", h.Batches.ActiveStudents)
	batches.GET("/:id", h.Batches.Get)
	batches.PUT("/:id", h.Batches.Update)
	batches.DELETE("/:id", h.Batches.Delete)
	batches.GET("/:id/students", h.Batches.Students)

	subs := authed.Group("/substitution", admin)
	subs.GET("/temporary", h.Substitutions.List)
	subs.POST("/temporary", h.Substitutions.Create)
	subs.PUT("/temporary/:id", h.Substitutions.Update)
	subs.DELETE("/temporary/:id", h.Substitutions.Cancel)
	subs.POST("/assign", h.Substitutions.Assign)
	subs.POST("/merge", h.Substitutions.Merge)

	authed.GET("/free-slots", admin, h.Scheduling.FreeSlots)
	authed.POST("/suggestions/suggest-faculty", admin, h.Scheduling.Suggest)

	students := authed.Group("/students", admin)
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)
	students.GET("/:id/batches", h.Students.Batches)

	attendance := authed.Group("/attendance")
	attendance.POST("", anyRole, h.Attendance.Save)
	attendance.GET("/batch/:batchId/daily", anyRole, h.Attendance.Daily)
	reports := attendance.Group("/reports", admin)
	reports.GET("/batch/:batchId", h.Attendance.BatchReport)
	reports.GET("/faculty/:facultyId", h.Attendance.FacultyReport)
	reports.GET("/overall", h.Attendance.OverallReport)

	authed.GET("/activities", admin, h.Activity.List)

	users := authed.Group("/users", admin)
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.PATCH("/assign-role", h.Users.AssignRole)
}
