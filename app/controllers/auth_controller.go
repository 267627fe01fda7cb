package controllers

import (
	"errors"
	"net/http"

	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{service: s}
}

func (a *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := a.service.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(user)
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (a *AuthController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}
	token, user, err := a.service.Login(c.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrBadCredentials) {
		c.Error(http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]any{"token": token, "user": user})
}

func (a *AuthController) Me(c *ctx.Context) {
	user, err := a.service.Profile(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

func (a *AuthController) UpdateMe(c *ctx.Context) {
	var in services.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := a.service.UpdateProfile(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK("Profile updated", user)
}

func (a *AuthController) ChangePassword(c *ctx.Context) {
	var in services.PasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := a.service.ChangePassword(c.Context(), c.UserID(), in); err != nil {
		fail(c, err)
		return
	}
	c.OK("Password changed", nil)
}
