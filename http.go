package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webafan/portfolio-auth/middleware/jwtware"
)

// HTTPAuthenticator is what the HTTP layer needs from an authenticator
type HTTPAuthenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Validate(ctx context.Context, token string) (ValidationResult, error)
	Logout(ctx context.Context) LogoutResult
}

var _ HTTPAuthenticator = (*Auther)(nil)

// RouteConfig configures how protected routes find and expose tokens
type RouteConfig interface {
	GetTokenLookup() string
	GetAuthScheme() string
	GetContextKey() string
}

// TokenValidator adapts the Auther to the jwt middleware
func (s *Auther) TokenValidator() jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(token string) (jwtware.AuthClaims, error) {
		res, err := s.Validate(context.Background(), token)
		if err != nil {
			return nil, err
		}
		return res.Claims, nil
	})
}

// ProtectedRoute returns a middleware that rejects requests without a
// valid bearer token. Claims are stored on the request under the configured
// key and in the request context. A nil errorHandler renders the
// generic invalid token response.
func (s *Auther) ProtectedRoute(cfg RouteConfig, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = s.MakeRouteAuthErrorHandler(false)
	}

	mwCfg := jwtware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: s.TokenValidator(),
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if jc, ok := claims.(*JWTClaims); ok {
				return WithClaimsContext(ctx, jc)
			}
			return ctx
		},
	}
	if cfg != nil {
		mwCfg.TokenLookup = cfg.GetTokenLookup()
		mwCfg.AuthScheme = cfg.GetAuthScheme()
		mwCfg.ContextKey = cfg.GetContextKey()
	}

	return jwtware.New(mwCfg)
}

// MakeRouteAuthErrorHandler renders a rejection from the jwt middleware.
// When optional is set a request with an absent, malformed or expired token
// continues down the chain without claims. Role denials are never skipped.
func (s *Auther) MakeRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		if errors.Is(err, jwtware.ErrAccessDenied) {
			return ctx.JSON(fiber.StatusForbidden, fiber.Map{"error": "Access denied"})
		}

		var reason ErrorKind
		switch {
		case IsTokenExpiredError(err):
			reason = KindExpired
		case IsMalformedError(err):
			reason = KindMalformedToken
		case IsTokenError(err):
			reason = KindOf(err)
		default:
			status, body := ErrorResponse(err)
			return ctx.JSON(status, body)
		}

		if optional {
			s.logger.Debug("optional auth failed, proceeding", "reason", reason, "path", ctx.Path())
			return ctx.Next()
		}
		return ctx.JSON(fiber.StatusUnauthorized, invalidTokenBody())
	}
}

// ErrorResponse maps err to the status code and body shown to a caller.
// Only the fixed public messages are ever rendered.
func ErrorResponse(err error) (int, fiber.Map) {
	switch KindOf(err) {
	case KindInvalidCredentials:
		return fiber.StatusUnauthorized, fiber.Map{"error": MessageInvalidCredentials}
	case KindMalformedToken, KindBadSignature, KindExpired:
		return fiber.StatusUnauthorized, invalidTokenBody()
	default:
		return fiber.StatusInternalServerError, fiber.Map{"error": MessageInternal}
	}
}

func invalidTokenBody() fiber.Map {
	return fiber.Map{"valid": false, "message": MessageInvalidToken}
}

// FiberErrorHandler is the app level error handler. Fiber errors keep their
// status; anything else is logged and rendered as a generic 500.
func FiberErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		logError(logger, "unhandled request error", err, "path", c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MessageInternal})
	}
}

// MetricsHandler exposes g in the Prometheus text format
func MetricsHandler(g prometheus.Gatherer) fiber.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

func logError(logger Logger, msg string, err error, args ...any) {
	var richErr *goerrors.Error
	if errors.As(err, &richErr) {
		args = append(args,
			"error", richErr.Error(),
			"category", richErr.Category,
			"text_code", richErr.TextCode,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	} else {
		args = append(args, "error", err)
	}
	logger.Error(msg, args...)
}
