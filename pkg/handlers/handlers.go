package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campuscalendarservice/pkg/auth"
	"campuscalendarservice/pkg/calendar"
	"campuscalendarservice/pkg/config"
	"campuscalendarservice/pkg/models"
	"campuscalendarservice/pkg/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"golang.org/x/oauth2"
)

const sessionEmailKey = "email"

// externalCallTimeout bounds every call to Google; neither the oauth2
// client nor the calendar API sets one by default.
const externalCallTimeout = 15 * time.Second

type Handler struct {
	cfg       config.Config
	oauthCfg  *oauth2.Config
	store     *session.Store
	users     repository.UserStore
	events    repository.EventStore
	callback  *auth.CallbackService
	calendars *calendar.Service
	logger    *slog.Logger
}

func New(cfg config.Config, oauthCfg *oauth2.Config, store *session.Store,
	users repository.UserStore, events repository.EventStore,
	callback *auth.CallbackService, calendars *calendar.Service, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		oauthCfg:  oauthCfg,
		store:     store,
		users:     users,
		events:    events,
		callback:  callback,
		calendars: calendars,
		logger:    logger,
	}
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.Home)
	app.Get("/login", h.Login)
	app.Get("/logout", h.Logout)
	app.Get("/auth/callback", h.AuthCallback)
	app.Get("/api/me", h.Me)
	app.Post("/api/events", h.CreateEvent)
	app.Get("/api/events", h.ListEvents)
	app.Get("/api/google/events", h.ListGoogleEvents)
}

func (h *Handler) Home(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(`<a href="/login">Login with Google</a>`)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	return c.Redirect(auth.LoginURL(h.oauthCfg, h.cfg.AllowedDomain))
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			h.logger.Error("failed to destroy session", "error", err)
		}
	}
	return c.Redirect(h.cfg.FrontendURL+"/login", fiber.StatusFound)
}

func (h *Handler) AuthCallback(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), externalCallTimeout)
	defer cancel()

	user, err := h.callback.Complete(ctx, c.Query("code"))
	if err != nil {
		var exchangeErr *auth.ExchangeError
		switch {
		case errors.Is(err, auth.ErrMissingCode):
			return c.Status(fiber.StatusBadRequest).SendString("Authorization code not found")
		case errors.Is(err, auth.ErrDomainDenied):
			c.Set("Content-Type", "text/html; charset=utf-8")
			return c.Status(fiber.StatusForbidden).
				SendString("<h2>Access denied</h2><p>You must login with a " + h.cfg.AllowedDomain + " email.</p>")
		case errors.As(err, &exchangeErr):
			return c.Status(fiber.StatusBadRequest).SendString(exchangeErr.Error())
		default:
			h.logger.Error("callback failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Login failed")
		}
	}

	sess, err := h.store.Get(c)
	if err != nil {
		h.logger.Error("failed to get session", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to get session")
	}
	sess.Set(sessionEmailKey, user.Email)
	if err := sess.Save(); err != nil {
		h.logger.Error("failed to save session", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to save session")
	}

	next := c.Query("next")
	if next == "" {
		next = h.cfg.FrontendURL + "/"
	}
	return c.Redirect(next, fiber.StatusFound)
}

// currentUser resolves the session email to a stored user. The two
// failure modes stay distinct: no session is 401, a session pointing
// at a missing user is 404.
func (h *Handler) currentUser(c *fiber.Ctx) (*models.User, error) {
	sess, err := h.store.Get(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	}
	email, _ := sess.Get(sessionEmailKey).(string)
	if email == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	}
	user, err := h.users.GetByEmail(c.UserContext(), email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to retrieve user")
	}
	return user, nil
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	name := ""
	if user.Name != nil {
		name = *user.Name
	}
	return c.JSON(fiber.Map{
		"id":    user.UserID.String(),
		"name":  name,
		"email": user.Email,
		"role":  "student",
	})
}

type createEventResponse struct {
	models.Event
	SyncStatus calendar.SyncStatus `json:"sync_status"`
	SyncReason string              `json:"sync_reason,omitempty"`
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var input calendar.CreateEventInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if input.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Title is required")
	}
	if !input.Type.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown event type")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), externalCallTimeout)
	defer cancel()

	event, result, err := h.calendars.CreateAndSync(ctx, user, input)
	if err != nil {
		h.logger.Error("failed to create event", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store event")
	}
	return c.Status(fiber.StatusCreated).JSON(createEventResponse{
		Event:      *event,
		SyncStatus: result.Status,
		SyncReason: result.Reason,
	})
}

func (h *Handler) ListEvents(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	events, err := h.events.ListByUser(c.UserContext(), user.UserID)
	if err != nil {
		h.logger.Error("failed to list events", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list events")
	}
	return c.JSON(events)
}

func (h *Handler) ListGoogleEvents(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var timeMin, timeMax *time.Time
	if raw := c.Query("time_min"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "time_min must be RFC3339")
		}
		timeMin = &t
	}
	if raw := c.Query("time_max"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "time_max must be RFC3339")
		}
		timeMax = &t
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), externalCallTimeout)
	defer cancel()

	normalized, err := h.calendars.ListRemote(ctx, user, timeMin, timeMax)
	if err != nil {
		h.logger.Error("failed to list google events", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list google events")
	}
	return c.JSON(normalized)
}
