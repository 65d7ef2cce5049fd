package identity

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

const rejectedRouteKey = "rejected_route"

// RouteAuthenticator bridges the facade and the HTTP transport: it exchanges
// credentials for a signed session cookie and guards protected routes.
type RouteAuthenticator struct {
	auth             *Auther
	tokens           *TokenService
	cfg              Config
	cookieDuration   time.Duration
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther *Auther, tokens *TokenService, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		auth:           auther,
		tokens:         tokens,
		cfg:            cfg,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login authenticates the payload and, on success, sets the session cookie.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) error {
	session, err := a.auth.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	token, err := a.tokens.Generate(session)
	if err != nil {
		return err
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return nil
}

// Register creates the account, establishes its session, and sets the cookie.
func (a *RouteAuthenticator) Register(ctx router.Context, payload RegisterPayload) error {
	session, err := a.auth.Register(ctx.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		a.Logger.Error("Register error: %s", err)
		return err
	}

	token, err := a.tokens.Generate(session)
	if err != nil {
		return err
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return nil
}

// Logout records the audit entry for the outgoing identity and clears the
// session cookie.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	if err := a.auth.Logout(ctx.Context()); err != nil {
		a.Logger.Warn("Logout error: %s", err)
	}
	a.cookieDel(ctx, a.cfg.GetContextKey())
}

// ProtectedRoute validates the session cookie and threads the resulting
// session through Locals and the request context.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			session, err := a.sessionFromCookie(c)
			if err != nil {
				return errorHandler(c, err)
			}

			c.Locals(a.cfg.GetContextKey(), session)
			c.SetContext(WithSession(c.Context(), session))
			return hf(c)
		}
	}
}

// AdminRoute is ProtectedRoute plus an administrator check.
func (a *RouteAuthenticator) AdminRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			session, err := a.sessionFromCookie(c)
			if err != nil {
				return errorHandler(c, err)
			}

			if !session.IsAdmin() {
				return errorHandler(c, ErrUnauthorized)
			}

			c.Locals(a.cfg.GetContextKey(), session)
			c.SetContext(WithSession(c.Context(), session))
			return hf(c)
		}
	}
}

func (a *RouteAuthenticator) sessionFromCookie(c router.Context) (*SessionObject, error) {
	token := c.Cookies(a.cfg.GetContextKey())
	if token == "" {
		return nil, ErrUnableToFindSession
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	return claims.Session(), nil
}

// GetRouterSession returns the session a guard middleware stored in Locals.
func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	value := c.Locals(key)
	if value == nil {
		return nil, ErrUnableToFindSession
	}

	session, ok := value.(*SessionObject)
	if session == nil || !ok {
		return nil, ErrUnableToFindSession
	}

	return session, nil
}

func (a *RouteAuthenticator) GetRedirect(ctx router.Context, def ...string) string {
	r := ctx.Cookies(rejectedRouteKey)
	if r == "" && len(def) > 0 {
		return def[0]
	}
	a.cookieDel(ctx, rejectedRouteKey)
	return r
}

func (a *RouteAuthenticator) SetRedirect(ctx router.Context) {
	ctx.Cookie(&router.Cookie{
		Name:     rejectedRouteKey,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to login: %s (%s) path=%s",
		richErr.Message,
		richErr.TextCode,
		c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect("/login", statusCode)
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler: %s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}
