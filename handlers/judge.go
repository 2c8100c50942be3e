package handlers

import (
	"award-nomination-system/middleware"
	"award-nomination-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupJudgeRoutes(app *fiber.App, judgeService *services.JudgeService) {
	// Judge-facing routes: personal work queue and review recording
	judge := app.Group("/judges/me", middleware.UserContextMiddleware(), middleware.RequireRole("judge"))
	judge.Get("/queue", judgeService.GetMyQueue)
	judge.Post("/reviews", judgeService.RecordMyReview)

	// Admin: judge management
	admin := app.Group("/admin/judges", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))
	admin.Post("/", judgeService.AssignJudgeEndpoint)
	admin.Get("/", judgeService.GetAllJudges)
	admin.Post("/:id/assignments", judgeService.UpdateAssignments)
	admin.Get("/:id/progress", judgeService.GetJudgeProgress)
	admin.Patch("/:id/status", judgeService.UpdateJudgeStatus)
}
