package kebapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// VenuesController serves the /venues routes
type VenuesController struct {
	repos    RepositoryManager
	settings *Settings
	logger   Logger
}

func NewVenuesController(repos RepositoryManager, settings *Settings, logger Logger) *VenuesController {
	if logger == nil {
		logger = defLogger{}
	}
	return &VenuesController{
		repos:    repos,
		settings: settings,
		logger:   logger,
	}
}

func (ctrl *VenuesController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	venue, err := ctrl.repos.Venues().Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(venue)
}

func (ctrl *VenuesController) GetSome(c *fiber.Ctx) error {
	paging := pagingFromQuery(c, ctrl.settings.Paging)

	records, err := ctrl.repos.Venues().GetSome(c.UserContext(), paging)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (ctrl *VenuesController) GetCount(c *fiber.Ctx) error {
	count, err := ctrl.repos.Venues().Count(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"count": count})
}

func (ctrl *VenuesController) GetDistance(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	lat, lng, err := coordinatesFromQuery(c)
	if err != nil {
		return err
	}

	distance, err := ctrl.repos.Venues().GetDistance(c.UserContext(), id, lat, lng)
	if err != nil {
		return err
	}

	return c.JSON(distance)
}

func (ctrl *VenuesController) GetNearby(c *fiber.Ctx) error {
	lat, lng, err := coordinatesFromQuery(c)
	if err != nil {
		return err
	}

	paging := pagingFromQuery(c, ctrl.settings.Paging)

	records, err := ctrl.repos.Venues().GetNearby(c.UserContext(), lat, lng, paging)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func coordinatesFromQuery(c *fiber.Ctx) (float64, float64, error) {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return 0, 0, err
	}

	lng, err := queryFloat(c, "lng")
	if err != nil {
		return 0, 0, err
	}

	return lat, lng, nil
}

func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, goerrors.New("Missing "+name+" query parameter", goerrors.CategoryBadInput)
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid "+name+" query parameter").
			WithMetadata(map[string]any{
				name: raw,
			})
	}

	return value, nil
}
