package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/utils"
)

type updateProfileReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	NewPassword     string `json:"new_password" validate:"omitempty,min=8"`
}

var profileMessages = map[string]string{
	"CurrentPassword": "current password is required",
	"Email":           "invalid email address",
	"NewPassword":     "new password must be at least 8 characters",
}

// UpdateProfile handles PATCH /v1/profile.  The caller proves possession
// of the account with the current password and may then change their
// email, their password, or both.  A request that changes nothing is
// rejected so clients notice no-op submissions.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": firstValidationMessage(err, profileMessages)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password is incorrect"})
	}

	changed := false
	if req.Email != "" && req.Email != u.Email {
		if err := h.Users.UpdateEmail(ctx, userID, req.Email); err != nil {
			if err == repository.ErrEmailExists {
				return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		changed = true
	}
	if req.NewPassword != "" {
		if err := h.Users.UpdatePassword(ctx, userID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		changed = true
	}
	if !changed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no changes to apply"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
