package handlers

import (
	"net/http"

	"github.com/example/taskman/internal/apperrors"
	"github.com/example/taskman/internal/handlers/render"
	"github.com/example/taskman/internal/handlers/userctx"
	"github.com/example/taskman/internal/logger"
	"github.com/example/taskman/internal/models"
)

func handleRegister(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Name     string `json:"name" validate:"omitempty,max=100"`
	}
	type response struct {
		Message     string            `json:"message"`
		User        models.PublicUser `json:"user"`
		AccessToken string            `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := auth.Register(r.Context(), data.Email, data.Password, data.Name)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindInternal {
				l.Error("register failed", "error", err)
			}
			render.Error(w, err)
			return
		}

		auth.SetRefreshCookie(w, pair.Refresh)
		render.JSON(w, response{
			Message:     "User registered successfully",
			User:        user.Public(),
			AccessToken: pair.Access.Value,
		})
	})
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		User        models.PublicUser `json:"user"`
		AccessToken string            `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := auth.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			// Wrong password and unknown email look identical from here,
			// the distinction lives in this log line only
			l.Info("login rejected", "error", err)
			render.Error(w, err)
			return
		}

		auth.SetRefreshCookie(w, pair.Refresh)
		render.JSON(w, response{
			User:        user.Public(),
			AccessToken: pair.Access.Value,
		})
	})
}

func handleMe() http.Handler {
	type response struct {
		User models.PublicUser `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		render.JSON(w, response{User: models.PublicUser{
			ID:    claims.UserID,
			Email: claims.Email,
			Name:  claims.Name,
		}})
	})
}

func handleRefresh(auth authService, l logger.Logger) http.Handler {
	type response struct {
		User        models.PublicUser `json:"user"`
		AccessToken string            `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := auth.ReadRefreshToken(r)
		if err != nil {
			render.Error(w, err)
			return
		}

		user, pair, err := auth.Refresh(r.Context(), refresh)
		if err != nil {
			// Expired, tampered and rotated-away tokens all collapse to 401.
			// Reused tokens show up here as denied rotations.
			l.Info("refresh rejected", "error", err)
			render.Error(w, err)
			return
		}

		auth.SetRefreshCookie(w, pair.Refresh)
		render.JSON(w, response{
			User:        user.Public(),
			AccessToken: pair.Access.Value,
		})
	})
}

func handleLogout(auth authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrAccessTokenInvalid)
			return
		}

		if err := auth.Logout(r.Context(), claims.UserID); err != nil {
			l.Error("logout failed", "error", err)
			render.Error(w, err)
			return
		}

		auth.ClearRefreshCookie(w)
		render.JSON(w, response{Message: "Logged out successfully"})
	})
}
