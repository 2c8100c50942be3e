package handlers

import (
	"award-nomination-system/middleware"
	"award-nomination-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNominationRoutes(app *fiber.App, nominationService *services.NominationService) {
	// Public routes: the submission form and the marketing pages
	app.Get("/categories", nominationService.GetCategories)
	app.Post("/nominations", nominationService.CreateNomination)
	app.Get("/nominations/finalists", nominationService.GetFinalists)
	app.Get("/nominations/winners", nominationService.GetWinners)

	// Admin review console
	admin := app.Group("/admin/nominations", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))
	admin.Get("/", nominationService.GetAllNominations)
	admin.Get("/:id", nominationService.GetNominationByID)
	admin.Patch("/:id/review", nominationService.ReviewNomination)
	admin.Patch("/:id/status", nominationService.UpdateNominationStatus)
	admin.Post("/:id/resubmit", nominationService.ResubmitNominationEndpoint)
	admin.Delete("/:id/photo", nominationService.RemoveNominationPhoto)
}
