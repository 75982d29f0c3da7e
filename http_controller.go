package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"

	"github.com/webafan/portfolio-auth/middleware/jwtware"
)

// PingMessage is the body of the liveness route
const PingMessage = "Server is working!"

type AuthControllerRoutes struct {
	Login    string
	Validate string
	Logout   string
	Ping     string
}

type AuthController struct {
	Logger Logger
	Routes *AuthControllerRoutes
	Auther HTTPAuthenticator
	// AuthScheme is the Authorization header scheme accepted by Validate
	AuthScheme string
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

// WithHTTPAuthenticator sets the authenticator backing the routes
func WithHTTPAuthenticator(a HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = a
		return c
	}
}

// WithAuthScheme overrides the "Bearer" scheme
func WithAuthScheme(scheme string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if scheme != "" {
			c.AuthScheme = scheme
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defaultLogger(),
		AuthScheme: "Bearer",
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Validate: "/validate",
			Logout:   "/logout",
			Ping:     "/test",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints on app
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).SetName("auth.login")
	app.Post(controller.Routes.Validate, controller.ValidatePost).SetName("auth.validate")
	app.Post(controller.Routes.Logout, controller.LogoutPost).SetName("auth.logout")
	app.Get(controller.Routes.Ping, controller.Ping).SetName("auth.test")

	return controller
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 1024)),
	)
}

// LoginPost authenticates the posted credentials. Unparseable and
// incomplete payloads get the same 401 as wrong credentials.
func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Debug("login payload rejected", "reason", "unparseable")
		return a.renderError(ctx, ErrInvalidCredentials)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("login payload rejected", "reason", "validation", "username", payload.Username)
		return a.renderError(ctx, ErrInvalidCredentials)
	}

	res, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res)
}

// ValidatePost checks the bearer token in the Authorization header
func (a *AuthController) ValidatePost(ctx router.Context) error {
	extractors := jwtware.GetExtractors("header:"+router.HeaderAuthorization, a.AuthScheme)

	token, err := jwtware.ExtractRawToken(ctx, extractors)
	if err != nil {
		return ctx.JSON(fiber.StatusUnauthorized, invalidTokenBody())
	}

	res, err := a.Auther.Validate(ctx.Context(), token)
	if err != nil || !res.Valid {
		return ctx.JSON(fiber.StatusUnauthorized, invalidTokenBody())
	}

	return ctx.JSON(fiber.StatusOK, fiber.Map{
		"valid":    true,
		"username": res.Username,
	})
}

// LogoutPost always succeeds; the client discards its token
func (a *AuthController) LogoutPost(ctx router.Context) error {
	return ctx.JSON(fiber.StatusOK, a.Auther.Logout(ctx.Context()))
}

// Ping is a liveness check
func (a *AuthController) Ping(ctx router.Context) error {
	return ctx.Send([]byte(PingMessage))
}

func (a *AuthController) renderError(ctx router.Context, err error) error {
	status, body := ErrorResponse(err)
	if status >= fiber.StatusInternalServerError {
		logError(a.Logger, "auth request failed", err, "path", ctx.Path())
	}
	return ctx.JSON(status, body)
}
