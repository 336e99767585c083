package kebapi

import (
	"context"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/kebapi/middleware/jwtware"
)

// UsersController serves the /users routes
type UsersController struct {
	repos    RepositoryManager
	auth     *Authenticator
	settings *Settings
	logger   Logger
}

func NewUsersController(repos RepositoryManager, auth *Authenticator, settings *Settings, logger Logger) *UsersController {
	if logger == nil {
		logger = defLogger{}
	}
	return &UsersController{
		repos:    repos,
		auth:     auth,
		settings: settings,
		logger:   logger,
	}
}

type credentialsPayload struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

func (p credentialsPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.UsernameOrEmail, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

type registrationPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (p registrationPayload) Validate(settings RegistrationSettings) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username,
			validation.Required,
			validation.Length(settings.MinUsernameLength, 0),
		),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password,
			validation.Required,
			validation.Length(settings.MinPasswordLength, 0),
		),
	)
}

type authResponse struct {
	APIStatus
	Token *SecurityToken `json:"token,omitempty"`
}

// Authenticate exchanges credentials for a signed token. Unknown identifier
// and wrong password produce the same 401; the error handler makes sure the
// body carries no hint of which it was.
func (ctrl *UsersController) Authenticate(c *fiber.Ctx) error {
	payload := credentialsPayload{}

	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Could not parse credentials")
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid credentials payload")
	}

	token, err := ctrl.auth.Login(c.UserContext(), payload.UsernameOrEmail, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(authResponse{
		APIStatus: APIStatus{
			StatusCode: fiber.StatusOK,
			Message:    "Authenticated.",
		},
		Token: token,
	})
}

// Register creates an account. The plaintext password is folded into a hash
// bundle before it goes anywhere near the repository.
func (ctrl *UsersController) Register(c *fiber.Ctx) error {
	payload := registrationPayload{}

	if err := c.BodyParser(&payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Could not parse registration")
	}

	if err := payload.Validate(ctrl.settings.Registration); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "Invalid registration payload")
	}

	bundle, err := GenerateHashBundle(payload.Password)
	if err != nil {
		return err
	}

	user, err := ctrl.repos.Users().Register(c.UserContext(), &User{
		Username:     payload.Username,
		Email:        payload.Email,
		Name:         payload.Name,
		PasswordHash: bundle,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (ctrl *UsersController) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	user, err := ctrl.repos.Users().Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func (ctrl *UsersController) GetSome(c *fiber.Ctx) error {
	paging := pagingFromQuery(c, ctrl.settings.Paging)

	records, err := ctrl.repos.Users().GetSome(c.UserContext(), paging)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (ctrl *UsersController) GetByUsername(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return goerrors.New("Missing username query parameter", goerrors.CategoryBadInput)
	}

	user, err := ctrl.repos.Users().GetByUsername(c.UserContext(), username)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func (ctrl *UsersController) GetCount(c *fiber.Ctx) error {
	count, err := ctrl.repos.Users().Count(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"count": count})
}

// Home returns the authenticated user's own record, resolved from the
// validated claims rather than any client supplied identifier.
func (ctrl *UsersController) Home(c *fiber.Ctx) error {
	claims, ok := jwtware.ClaimsFromContext(c, claimsContextKey)
	if !ok {
		return respondStatus(c, fiber.StatusUnauthorized, "Authentication required.")
	}

	id, err := strconv.ParseInt(claims.UserID(), 10, 64)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryAuth, "Token carries no usable user id")
	}

	user, err := ctrl.repos.Users().Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func (ctrl *UsersController) GetSomeFavourites(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	paging := pagingFromQuery(c, ctrl.settings.Paging)

	venues, err := ctrl.repos.Users().GetFavourites(c.UserContext(), id, paging)
	if err != nil {
		return err
	}

	return c.JSON(venues)
}

func (ctrl *UsersController) AddFavourite(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	venueID, err := paramID(c, "venueId")
	if err != nil {
		return err
	}

	affected, err := ctrl.repos.Users().AddFavourite(c.UserContext(), id, venueID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"rows_affected": affected})
}

func (ctrl *UsersController) RemoveFavourite(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	venueID, err := paramID(c, "venueId")
	if err != nil {
		return err
	}

	affected, err := ctrl.repos.Users().RemoveFavourite(c.UserContext(), id, venueID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"rows_affected": affected})
}

func (ctrl *UsersController) GetAccountStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	status, err := ctrl.repos.Users().GetAccountStatus(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"account_status": status})
}

func (ctrl *UsersController) Activate(c *fiber.Ctx) error {
	return ctrl.updateStatus(c, ctrl.repos.Users().Activate)
}

func (ctrl *UsersController) Deactivate(c *fiber.Ctx) error {
	return ctrl.updateStatus(c, ctrl.repos.Users().Deactivate)
}

func (ctrl *UsersController) updateStatus(c *fiber.Ctx, update func(ctx context.Context, id int64) (int64, error)) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	affected, err := update(c.UserContext(), id)
	if err != nil {
		return err
	}

	if affected == 0 {
		return NewRecordNotFound("user", map[string]any{"id": id})
	}

	return c.JSON(fiber.Map{"rows_affected": affected})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid "+name+" parameter").
			WithMetadata(map[string]any{
				name: raw,
			})
	}

	return id, nil
}

func pagingFromQuery(c *fiber.Ctx, settings PagingSettings) Paging {
	return NormalizePaging(settings,
		c.QueryInt("start_row", settings.MinStartRow),
		c.QueryInt("row_count", settings.MaxRowCount),
	)
}
