package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/application/dto"
)

// AuthHandler login del personal y contraseña de administrador.
type AuthHandler struct {
	svc *cashbox.Service
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(svc *cashbox.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Sin password el token es de dealer; con la contraseña de administrador, de admin.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "staff, password opcional"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	res, err := h.svc.Login(c.UserContext(), in.Staff, in.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LoginResponse{Token: res.Token, Staff: res.Staff, Role: res.Role})
}

// ChangeAdminPassword godoc
// @Summary      Cambiar contraseña de administrador
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ChangePasswordRequest  true  "current, next"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/settings/admin-password [put]
func (h *AuthHandler) ChangeAdminPassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.svc.ChangeAdminPassword(c.UserContext(), in.Current, in.Next); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
