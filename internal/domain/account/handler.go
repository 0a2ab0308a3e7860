package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc     *Service
	denials auth.DenialRecorder
}

func NewHandler(svc *Service, denials auth.DenialRecorder) *Handler {
	return &Handler{svc: svc, denials: denials}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/users", h.ListUsers, auth.RequirePermission(PermUserRead, h.denials))
	api.GET("/users/:id", h.GetUser, auth.RequirePermission(PermUserRead, h.denials))
	api.POST("/users", h.CreateUser, auth.RequirePermission(PermUserCreate, h.denials))
	api.POST("/users/:id/roles", h.AssignRole, auth.RequirePermission(PermRoleAssign, h.denials))
	api.POST("/users/:id/permissions", h.GrantPermission, auth.RequirePermission(PermPermissionAssign, h.denials))
	api.GET("/roles", h.ListRoles, auth.RequirePermission(PermRoleRead, h.denials))
	api.GET("/permissions", h.ListPermissions, auth.RequirePermission(PermPermissionRead, h.denials))
}

type createUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	u, err := h.svc.CreateUser(c.Request().Context(), req.Email, req.FullName, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case errors.Is(err, ErrWeakPassword):
			return echo.NewHTTPError(http.StatusBadRequest, "password too short")
		case errors.Is(err, ErrUnknownRole):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create user")
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load user")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list users")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) AssignRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req assignRoleRequest
	if err := c.Bind(&req); err != nil || req.Role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role is required")
	}

	if err := h.svc.AssignRole(c.Request().Context(), id, req.Role); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case errors.Is(err, ErrUnknownRole):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not assign role")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type grantPermissionRequest struct {
	Permission string `json:"permission"`
}

func (h *Handler) GrantPermission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req grantPermissionRequest
	if err := c.Bind(&req); err != nil || req.Permission == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "permission is required")
	}

	if err := h.svc.GrantPermission(c.Request().Context(), id, req.Permission); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case errors.Is(err, ErrUnknownPermission):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown permission")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not grant permission")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) ListRoles(c echo.Context) error {
	roles, err := h.svc.ListRoles(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list roles")
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *Handler) ListPermissions(c echo.Context) error {
	perms, err := h.svc.ListPermissions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list permissions")
	}
	return c.JSON(http.StatusOK, perms)
}
