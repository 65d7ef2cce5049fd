package identity

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// RegisterAuthRoutes mounts the session routes on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.
		Get(controller.Routes.Login, controller.LoginShow).
		SetName("sign-in.get")

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).
		SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("register.post")
}

type AuthControllerRoutes struct {
	Login    string
	Logout   string
	Register string
}

type AuthControllerViews struct {
	Login    string
	Register string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Routes       *AuthControllerRoutes
	Views        *AuthControllerViews
	Auther       *RouteAuthenticator
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerAuther(auther *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
		},
		Views: &AuthControllerViews{
			Login:    "login",
			Register: "register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

func (a *AuthController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginPayload)
	errs := map[string]string{}

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	if err := a.Auther.Login(ctx, *payload); err != nil {
		errs["authentication"] = "Authentication Error"
		return ctx.Render(a.Views.Login, router.ViewContext{
			"errors":  errs,
			"payload": payload,
		})
	}

	redirect := a.Auther.GetRedirect(ctx, "/")
	return ctx.Redirect(redirect, router.StatusSeeOther)
}

func (a *AuthController) LogOut(ctx router.Context) error {
	a.Auther.Logout(ctx)
	return ctx.Redirect("/", router.StatusTemporaryRedirect)
}

func (a *AuthController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegisterPayload{},
	})
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegisterPayload)

	if err := ctx.Bind(payload); err != nil {
		errs := map[string]string{}
		errs["form"] = "Failed to parse form"
		a.Logger.Error("register parse payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": errs,
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": err.Error(),
		})
	}

	if err := a.Auther.Register(ctx, *payload); err != nil {
		a.Logger.Error("register error: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error creating account",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": []string{err.Error()},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Successful user registration",
	}).Redirect("/", fiber.StatusSeeOther)
}

// RouteRegistrar captures the router methods the admin controller uses.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AdminController exposes the user-management and audit endpoints as JSON.
// Mount it behind RouteAuthenticator.AdminRoute; the facade re-checks the
// administrator flag on every call regardless.
type AdminController struct {
	Logger Logger
	Auth   *Auther
}

func NewAdminController(auth *Auther) *AdminController {
	if auth == nil {
		panic("Missing Auther in admin controller...")
	}
	return &AdminController{
		Logger: defLogger{},
		Auth:   auth,
	}
}

// RegisterRoutes mounts the admin endpoints on the given group.
func (a *AdminController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("/users", a.ListUsers, mw...)
	group.Post("/users", a.CreateUser, mw...)
	group.Post("/users/:id/delete", a.DeleteUser, mw...)
	group.Post("/users/:id/block", a.BlockUser, mw...)
	group.Post("/users/:id/unblock", a.UnblockUser, mw...)
	group.Post("/users/:id/grant-admin", a.GrantAdmin, mw...)
	group.Post("/users/:id/revoke-admin", a.RevokeAdmin, mw...)
	group.Get("/activity", a.ListActivity, mw...)
}

func (a *AdminController) ListUsers(ctx router.Context) error {
	users, err := a.Auth.ListUsers(ctx.Context())
	if err != nil {
		return a.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, map[string]any{
		"users": users,
	})
}

func (a *AdminController) CreateUser(ctx router.Context) error {
	payload := new(CreateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	account, err := a.Auth.CreateUser(ctx.Context(), payload.Email, payload.Password, payload.Name, payload.Admin)
	if err != nil {
		return a.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": account,
	})
}

func (a *AdminController) DeleteUser(ctx router.Context) error {
	if err := a.Auth.DeleteUser(ctx.Context(), ctx.Param("id")); err != nil {
		return a.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "removed",
	})
}

func (a *AdminController) BlockUser(ctx router.Context) error {
	if err := a.Auth.Block(ctx.Context(), ctx.Param("id")); err != nil {
		return a.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "blocked",
	})
}

func (a *AdminController) UnblockUser(ctx router.Context) error {
	if err := a.Auth.Unblock(ctx.Context(), ctx.Param("id")); err != nil {
		return a.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "unblocked",
	})
}

func (a *AdminController) GrantAdmin(ctx router.Context) error {
	if err := a.Auth.GrantAdmin(ctx.Context(), ctx.Param("id")); err != nil {
		return a.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "admin-granted",
	})
}

func (a *AdminController) RevokeAdmin(ctx router.Context) error {
	if err := a.Auth.RevokeAdmin(ctx.Context(), ctx.Param("id")); err != nil {
		return a.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "admin-revoked",
	})
}

func (a *AdminController) ListActivity(ctx router.Context) error {
	entries, err := a.Auth.ListActivity(ctx.Context())
	if err != nil {
		return a.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, map[string]any{
		"activity": entries,
	})
}

func (a *AdminController) handleError(ctx router.Context, err error) error {
	a.Logger.Error("admin operation error: %s", err)
	return ctx.JSON(statusForError(err), map[string]string{
		"error": err.Error(),
	})
}

func statusForError(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return fiber.StatusInternalServerError
}

func defaultErrHandler(c router.Context, err error) error {
	return c.Render("errors/500", router.ViewContext{
		"message": err.Error(),
	})
}
