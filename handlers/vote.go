package handlers

import (
	"award-nomination-system/middleware"
	"award-nomination-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupVoteRoutes(app *fiber.App, voteService *services.VoteService) {
	// Public: cast a vote, see the running tally
	app.Post("/votes", voteService.CreateVote)
	app.Get("/votes/tally", voteService.GetTally)

	// Admin anti-fraud review
	admin := app.Group("/admin/votes", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))
	admin.Get("/ip-frequency", voteService.GetIPFrequency)
	admin.Patch("/:id/void", voteService.VoidVoteEndpoint)
}
