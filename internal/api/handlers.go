package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nhle/deadline-harvester/internal/harvest"
	"github.com/nhle/deadline-harvester/internal/store"
	"github.com/nhle/deadline-harvester/internal/sync"
)

const (
	defaultUpcomingDays = 7
	defaultRunLimit     = 20
)

type handler struct {
	deps Deps
	now  func() time.Time
}

// health responds with server health status
func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// GET /api/deadlines?all=true
func (h *handler) listDeadlines(c *fiber.Ctx) error {
	all := c.QueryBool("all", false)
	deadlines, err := h.deps.Store.ListDeadlines(c.UserContext(), !all)
	if err != nil {
		return err
	}
	return c.JSON(deadlines)
}

// GET /api/deadlines/search?q=prefix
func (h *handler) searchDeadlines(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	}
	deadlines, err := h.deps.Store.SearchByTitlePrefix(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(deadlines)
}

// GET /api/deadlines/upcoming?days=7
func (h *handler) upcomingDeadlines(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultUpcomingDays)
	if days <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "days must be a positive integer")
	}
	deadlines, err := h.deps.Store.UpcomingDeadlines(c.UserContext(), h.now(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(deadlines)
}

// GET /api/deadlines/:id
func (h *handler) getDeadline(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid deadline id")
	}
	d, err := h.deps.Store.GetDeadline(c.UserContext(), int64(id))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// GET /api/duplicates
func (h *handler) duplicates(c *fiber.Ctx) error {
	pairs, err := h.deps.Engine.FindDuplicates(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(pairs)
}

type mergeRequest struct {
	KeepID   int64 `json:"keep_id"`
	RemoveID int64 `json:"remove_id"`
}

// POST /api/deadlines/merge
func (h *handler) merge(c *fiber.Ctx) error {
	var req mergeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.KeepID <= 0 || req.RemoveID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "keep_id and remove_id are required")
	}

	err := h.deps.Engine.Merge(c.UserContext(), req.KeepID, req.RemoveID)
	switch {
	case errors.Is(err, harvest.ErrSameDeadline):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"kept": req.KeepID, "removed": req.RemoveID})
}

type cleanupRequest struct {
	Days *int `json:"days"`
}

// POST /api/deadlines/cleanup
func (h *handler) cleanup(c *fiber.Ctx) error {
	var req cleanupRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	days := h.deps.CleanupDays
	if req.Days != nil {
		days = *req.Days
	}
	if days < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "days must not be negative")
	}

	n, err := h.deps.Engine.Cleanup(c.UserContext(), days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"removed": n, "days": days})
}

// POST /api/harvest
func (h *handler) harvest(c *fiber.Ctx) error {
	if h.deps.Trigger == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "harvesting is not configured")
	}

	res, err := h.deps.Trigger(c.UserContext())
	if errors.Is(err, sync.ErrRunInProgress) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if err != nil {
		body := fiber.Map{"error": err.Error()}
		if res != nil {
			body["result"] = res
		}
		return c.Status(fiber.StatusBadGateway).JSON(body)
	}
	return c.Status(fiber.StatusAccepted).JSON(res)
}

// GET /api/runs?limit=20
func (h *handler) runs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultRunLimit)
	if limit <= 0 {
		limit = defaultRunLimit
	}
	runs, err := h.deps.Store.RecentRuns(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(runs)
}
