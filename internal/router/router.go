package router

import (
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/jenca-cloud/users/internal/config"
	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/handler"
)

// RegisterStorage wires the storage service's routes and middleware.
// Every /users route is behind the content-type gate.
func RegisterStorage(e *echo.Echo, h *handler.UserHandler) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	users := e.Group("/users", requireJSON)
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/:email", h.GetUser)
	users.DELETE("/:email", h.DeleteUser)
}

// RegisterAuth wires the authentication service's routes. Logout sits
// behind a cookie JWT guard: requests without a validly signed session
// cookie are rejected before the handler runs.
func RegisterAuth(e *echo.Echo, cfg *config.Config, h *handler.AuthHandler) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login)
	e.POST("/signup", h.Signup)

	session := e.Group("/logout", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.SecretKey),
		TokenLookup: "cookie:" + handler.SessionCookieName,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
		},
	}))
	session.POST("", h.Logout)
}

// requireJSON rejects any request whose declared content type is not
// application/json, before any handler or database work.
func requireJSON(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ct := c.Request().Header.Get(echo.HeaderContentType)
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != echo.MIMEApplicationJSON {
			body := apperrors.UnsupportedMediaTypeError()
			return c.JSON(body.Status, body)
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the echo.Validator used by both services. Field
// failures are reported under their JSON wire names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
