package kebapi

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/kebapi/middleware/jwtware"
)

// APIStatus is the response envelope for errors and acknowledgements
type APIStatus struct {
	StatusCode int      `json:"status_code"`
	Message    string   `json:"message,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// claimsContextKey is the Locals key the middleware stores validated claims
// under; every consumer reads it through this constant.
const claimsContextKey = "user"

// Server wires the controllers, middleware, and routes into a fiber app
type Server struct {
	app        *fiber.App
	settings   *Settings
	repos      RepositoryManager
	auth       *Authenticator
	tokens     *TokenService
	authorizer *Authorizer
	logger     Logger
}

// NewServer builds the HTTP surface. The repositories, authenticator, and
// token service are mandatory; a missing one is a programming error.
func NewServer(settings *Settings, repos RepositoryManager, auth *Authenticator, tokens *TokenService, logger Logger) *Server {
	if repos == nil {
		panic("Missing RepositoryManager in server...")
	}
	if auth == nil {
		panic("Missing Authenticator in server...")
	}
	if tokens == nil {
		panic("Missing TokenService in server...")
	}
	if logger == nil {
		logger = defLogger{}
	}

	s := &Server{
		settings:   settings,
		repos:      repos,
		auth:       auth,
		tokens:     tokens,
		authorizer: NewAuthorizer(),
		logger:     logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "kebapi",
		ErrorHandler: s.errorHandler,
	})

	s.registerRoutes()

	return s
}

// App exposes the underlying fiber app, mostly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails or the app is shut down
func (s *Server) Listen() error {
	return s.app.Listen(s.settings.Server.Address)
}

// Shutdown gracefully drains in-flight requests
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	users := NewUsersController(s.repos, s.auth, s.settings, s.logger)
	venues := NewVenuesController(s.repos, s.settings, s.logger)

	protected := jwtware.New(jwtware.Config{
		Validator: func(raw string) (jwtware.AuthClaims, error) {
			claims, err := s.tokens.Validate(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		},
		ContextKey:   claimsContextKey,
		ErrorHandler: s.authErrorHandler,
	})

	guard := func(requirement Requirement) fiber.Handler {
		return s.requireAuthorization(requirement)
	}

	app := s.app

	// Resources belonging to a user live under /users/{id}/{resource};
	// reads need CanReadUser, updates CanUpdateUser. /users and /users/find
	// stay anonymous to match the original surface.
	app.Post("/users/auth", users.Authenticate)
	app.Post("/users/register", users.Register)
	app.Get("/users", users.GetSome)
	app.Get("/users/find", users.GetByUsername)
	app.Get("/users/home", protected, guard(CanReadUsersHome), users.Home)
	app.Get("/users/count", protected, guard(IsInRoleAdmin), users.GetCount)
	app.Get("/users/:id", protected, guard(CanReadUser), users.Get)
	app.Get("/users/:id/favourites", protected, guard(CanReadUser), users.GetSomeFavourites)
	app.Post("/users/:id/favourites/:venueId", protected, guard(CanUpdateUser), users.AddFavourite)
	app.Delete("/users/:id/favourites/:venueId", protected, guard(CanUpdateUser), users.RemoveFavourite)
	app.Get("/users/:id/status", protected, guard(CanReadUser), users.GetAccountStatus)
	app.Patch("/users/:id/activate", protected, guard(CanUpdateUser), users.Activate)
	app.Patch("/users/:id/deactivate", protected, guard(CanUpdateUser), users.Deactivate)

	app.Get("/venues", venues.GetSome)
	app.Get("/venues/nearby", venues.GetNearby)
	app.Get("/venues/count", protected, guard(IsInRoleAdmin), venues.GetCount)
	app.Get("/venues/:id", venues.Get)
	app.Get("/venues/:id/distance", venues.GetDistance)

	// Critical schema operations stay dev-only; they cannot require
	// authorisation because authorisation needs a database that may not
	// exist yet.
	if s.settings.Server.IsDevelopment() {
		admins := NewAdminsController(s.repos, s.logger)
		app.Get("/admin/dev/createdb", admins.CreateSchema)
		app.Get("/admin/dev/dropdb", admins.DropSchema)
		app.Get("/admin/dev/resetdb", admins.ResetSchema)
		app.Get("/admin/dev/resettestdb", admins.ResetTestSchema)
	}
}

// requireAuthorization gates a route on a Requirement evaluated against the
// validated claims and the request path. Every denial looks identical: no
// response may leak whether ownership or role was the failing predicate.
func (s *Server) requireAuthorization(requirement Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(claimsContextKey).(AuthClaims)
		if !ok {
			return respondStatus(c, fiber.StatusUnauthorized, "Authentication required.")
		}

		if !s.authorizer.Can(claims, requirement, c.Path()) {
			return respondStatus(c, fiber.StatusForbidden, "Forbidden.")
		}

		return c.Next()
	}
}

func (s *Server) authErrorHandler(c *fiber.Ctx, err error) error {
	if goerrors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return respondStatus(c, fiber.StatusBadRequest, jwtware.ErrJWTMissingOrMalformed.Error())
	}
	return respondStatus(c, fiber.StatusUnauthorized, "Invalid or expired token.")
}

// errorHandler maps errors that escape a handler. Authentication failures
// are uniform 401s regardless of cause, and internal detail never reaches
// the response body.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if goerrors.As(err, &fiberErr) {
		return respondStatus(c, fiberErr.Code, fiberErr.Message)
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	switch richErr.Category {
	case goerrors.CategoryAuth:
		return respondStatus(c, fiber.StatusUnauthorized, "Authentication failed.")
	case goerrors.CategoryAuthz:
		return respondStatus(c, fiber.StatusForbidden, "Forbidden.")
	case goerrors.CategoryNotFound:
		return respondStatus(c, fiber.StatusNotFound, richErr.Message)
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return respondStatus(c, fiber.StatusBadRequest, richErr.Message)
	case goerrors.CategoryConflict:
		return respondStatus(c, fiber.StatusConflict, richErr.Message)
	default:
		s.logger.Error("Unhandled server error path=%s: %v", c.Path(), err)
		return respondStatus(c, fiber.StatusInternalServerError, "An unexpected server error occurred.")
	}
}

func respondStatus(c *fiber.Ctx, statusCode int, message string, errs ...string) error {
	return c.Status(statusCode).JSON(APIStatus{
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
	})
}
