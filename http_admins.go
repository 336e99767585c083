package kebapi

import (
	"github.com/gofiber/fiber/v2"
)

// AdminsController serves the dev-only schema management routes. The server
// only mounts it when running in the development environment.
type AdminsController struct {
	repos  RepositoryManager
	logger Logger
}

func NewAdminsController(repos RepositoryManager, logger Logger) *AdminsController {
	if logger == nil {
		logger = defLogger{}
	}
	return &AdminsController{
		repos:  repos,
		logger: logger,
	}
}

func (ctrl *AdminsController) CreateSchema(c *fiber.Ctx) error {
	ctrl.logger.Warn("Creating database schema via dev endpoint")

	if err := ctrl.repos.CreateSchema(c.UserContext()); err != nil {
		return err
	}

	return respondStatus(c, fiber.StatusOK, "Schema created.")
}

func (ctrl *AdminsController) DropSchema(c *fiber.Ctx) error {
	ctrl.logger.Warn("Dropping database schema via dev endpoint")

	if err := ctrl.repos.DropSchema(c.UserContext()); err != nil {
		return err
	}

	return respondStatus(c, fiber.StatusOK, "Schema dropped.")
}

func (ctrl *AdminsController) ResetSchema(c *fiber.Ctx) error {
	ctrl.logger.Warn("Resetting database schema via dev endpoint")

	if err := ctrl.repos.ResetSchema(c.UserContext()); err != nil {
		return err
	}

	return respondStatus(c, fiber.StatusOK, "Schema reset.")
}

func (ctrl *AdminsController) ResetTestSchema(c *fiber.Ctx) error {
	ctrl.logger.Warn("Resetting database schema with sample data via dev endpoint")

	if err := ctrl.repos.ResetSchema(c.UserContext()); err != nil {
		return err
	}

	if err := ctrl.repos.SeedSampleData(c.UserContext()); err != nil {
		return err
	}

	return respondStatus(c, fiber.StatusOK, "Schema reset and sample data inserted.")
}
