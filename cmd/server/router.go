package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/tasktracker/internal/api"
	apiMiddleware "github.com/phrazzld/tasktracker/internal/api/middleware"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/i18n"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewLanguageMiddleware(app.translator))

	errs := api.NewErrorResponder(app.translator)
	authHandler := api.NewAuthHandler(app.userService, app.jwtService, errs, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, errs, app.logger)
	tagHandler := api.NewTagHandler(app.tagService, errs, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.translator)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleAPIError(w, r, domain.ErrInvalidID)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.RespondWithMessage(w, r, http.StatusMethodNotAllowed, i18n.MsgMethodNotAllowed, "Method not allowed.")
	})

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/signup/", authHandler.Signup)
		r.Post("/login/", authHandler.Login)
		r.Post("/token/refresh/", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Get("/{id}/", taskHandler.GetTask)
				r.Put("/{id}/", taskHandler.UpdateTask)
				r.Patch("/{id}/", taskHandler.PatchTask)
				r.Delete("/{id}/", taskHandler.DeleteTask)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", tagHandler.ListTags)
				r.Post("/", tagHandler.CreateTag)
				r.Get("/{id}/", tagHandler.GetTag)
				r.Delete("/{id}/", tagHandler.DeleteTag)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
