package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/activekidz/roster-resolution/internal/queue"
    "github.com/activekidz/roster-resolution/internal/repository"
    "github.com/activekidz/roster-resolution/internal/resolution"
    queue_publisher "github.com/activekidz/roster-resolution/internal/service"
)

// RosterHandler bundles dependencies for the roster administration endpoints.
// Every endpoint here sits behind JWT auth and the STAFF/ADMIN role gate.
type RosterHandler struct {
    Orch   *resolution.Orchestrator
    Orders *repository.OrderRepo
    Batch  int // default page size when a request does not name one
}

func NewRosterHandler(orch *resolution.Orchestrator, orders *repository.OrderRepo, batch int) *RosterHandler {
    return &RosterHandler{Orch: orch, Orders: orders, Batch: batch}
}

// buildTimeout bounds a full build run; batch runs page through the whole
// order table so the usual per-request 5s budget does not apply.
const buildTimeout = 10 * time.Minute

// ----- DTOs -----

type buildReq struct {
    ClearExisting  bool     `json:"clear_existing"`
    Statuses       []string `json:"statuses"`
    From           string   `json:"from"`
    To             string   `json:"to"`
    BatchSize      int      `json:"batch_size"`
    Validate       *bool    `json:"validate"`
    SkipDuplicates bool     `json:"skip_duplicates"`
}

type rebuildReq struct {
    OrderIDs       []uint64 `json:"order_ids"`
    Validate       *bool    `json:"validate"`
    SkipDuplicates bool     `json:"skip_duplicates"`
}

type resolveReq struct {
    Validate       *bool `json:"validate"`
    SkipDuplicates bool  `json:"skip_duplicates"`
}

type assignReq struct {
    AttendeeName string `json:"attendee_name"`
}

// Build runs a full batch resolution and returns its statistics.  The run
// itself never fails on bad records; only a catastrophic store failure
// produces a non-200 response.
func (h *RosterHandler) Build(c echo.Context) error {
    var req buildReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    opts, err := req.batchOptions()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if opts.BatchSize <= 0 {
        opts.BatchSize = h.Batch
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), buildTimeout)
    defer cancel()

    stats, err := h.Orch.ResolveBatch(ctx, opts)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build failed"})
    }
    publishBuildEvent(stats)
    return c.JSON(http.StatusOK, stats)
}

// Rebuild re-resolves an explicit set of orders inside one transaction.
func (h *RosterHandler) Rebuild(c echo.Context) error {
    var req rebuildReq
    if err := c.Bind(&req); err != nil || len(req.OrderIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_ids required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), buildTimeout)
    defer cancel()

    stats, err := h.Orch.RebuildOrders(ctx, req.OrderIDs, resolution.Options{
        SkipAgeGender:  !boolOr(req.Validate, true),
        SkipDuplicates: req.SkipDuplicates,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rebuild failed"})
    }
    publishBuildEvent(stats)
    return c.JSON(http.StatusOK, stats)
}

// ResolveOrder resolves one order and returns the roster entries persisted
// for it.
func (h *RosterHandler) ResolveOrder(c echo.Context) error {
    orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || orderID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
    }
    var req resolveReq
    _ = c.Bind(&req) // empty body means defaults

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    entries, err := h.Orch.ResolveOrder(ctx, orderID, resolution.Options{
        SkipAgeGender:  !boolOr(req.Validate, true),
        SkipDuplicates: req.SkipDuplicates,
    })
    if err != nil {
        return rosterError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"order_id": orderID, "entries": entries})
}

// Preview runs a dry resolution pass and reports what a build would do
// without writing anything.
func (h *RosterHandler) Preview(c echo.Context) error {
    opts, err := previewOptions(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), buildTimeout)
    defer cancel()

    sum, err := h.Orch.Preview(ctx, opts)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "preview failed"})
    }
    return c.JSON(http.StatusOK, sum)
}

// Integrity runs the read-only consistency check over the persisted roster.
func (h *RosterHandler) Integrity(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), buildTimeout)
    defer cancel()

    report, err := h.Orch.CheckIntegrity(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "integrity check failed"})
    }
    return c.JSON(http.StatusOK, report)
}

// Cleanup removes roster entries whose order no longer exists.  Destructive,
// so it is a separate explicit endpoint rather than part of the check.
func (h *RosterHandler) Cleanup(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), buildTimeout)
    defer cancel()

    removed, err := h.Orch.CleanupOrphans(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cleanup failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}

// SeedPlaceholders creates one placeholder roster entry per variant of a
// catalog entry so upcoming events show on the roster before any booking.
func (h *RosterHandler) SeedPlaceholders(c echo.Context) error {
    entryID, err := strconv.ParseUint(c.Param("entryID"), 10, 64)
    if err != nil || entryID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid catalog entry id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    seeded, err := h.Orch.SeedPlaceholders(ctx, entryID)
    if err != nil {
        return rosterError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"catalog_entry_id": entryID, "seeded": seeded})
}

// Assign writes a manual attendee assignment onto a line item and drops the
// matcher's cached result for it, so the next resolution picks the new name
// up through the assigned-name strategy.
func (h *RosterHandler) Assign(c echo.Context) error {
    itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || itemID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order item id"})
    }
    var req assignReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.AttendeeName) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "attendee_name required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Orders.SetAssignedAttendee(ctx, itemID, strings.TrimSpace(req.AttendeeName)); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save assignment failed"})
    }
    h.Orch.Matcher().Invalidate(itemID)
    return c.NoContent(http.StatusNoContent)
}

// ----- helpers -----

func (r buildReq) batchOptions() (resolution.BatchOptions, error) {
    opts := resolution.BatchOptions{
        ClearExisting:  r.ClearExisting,
        Statuses:       r.Statuses,
        BatchSize:      r.BatchSize,
        Validate:       boolOr(r.Validate, true),
        SkipDuplicates: r.SkipDuplicates,
    }
    var err error
    if opts.From, err = parseTimeParam(r.From); err != nil {
        return opts, errors.New("invalid from date")
    }
    if opts.To, err = parseTimeParam(r.To); err != nil {
        return opts, errors.New("invalid to date")
    }
    return opts, nil
}

func previewOptions(c echo.Context) (resolution.BatchOptions, error) {
    opts := resolution.BatchOptions{Validate: true}
    if s := strings.TrimSpace(c.QueryParam("statuses")); s != "" {
        for _, part := range strings.Split(s, ",") {
            if part = strings.TrimSpace(part); part != "" {
                opts.Statuses = append(opts.Statuses, part)
            }
        }
    }
    if c.QueryParam("validate") == "false" {
        opts.Validate = false
    }
    var err error
    if opts.From, err = parseTimeParam(c.QueryParam("from")); err != nil {
        return opts, errors.New("invalid from date")
    }
    if opts.To, err = parseTimeParam(c.QueryParam("to")); err != nil {
        return opts, errors.New("invalid to date")
    }
    return opts, nil
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates; empty means unset.
func parseTimeParam(s string) (*time.Time, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil, nil
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        t = t.UTC()
        return &t, nil
    }
    t, err := time.Parse("2006-01-02", s)
    if err != nil {
        return nil, err
    }
    t = t.UTC()
    return &t, nil
}

func boolOr(b *bool, def bool) bool {
    if b == nil {
        return def
    }
    return *b
}

// rosterError maps pipeline errors onto HTTP statuses.
func rosterError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, resolution.ErrOrderNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
    case errors.Is(err, resolution.ErrEntryNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "catalog entry not found"})
    default:
        var oe *resolution.OrderError
        if errors.As(err, &oe) {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": oe.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolution failed"})
    }
}

// publishBuildEvent fans the run summary out to the broker.  Failures are
// logged by the publisher and otherwise ignored; the build already
// succeeded and its statistics are the response body.
func publishBuildEvent(stats *resolution.BuildStatistics) {
    ev := queue.RosterBuildCompletedEvent{
        RunID:            stats.RunID,
        OrdersProcessed:  stats.OrdersProcessed,
        Created:          stats.Created,
        Updated:          stats.Updated,
        SkippedOrders:    stats.SkippedOrders,
        ValidationErrors: stats.ValidationErrors,
        PlayersProcessed: stats.PlayersProcessed,
        StartedAt:        stats.StartTime.UTC().Format(time.RFC3339),
        FinishedAt:       stats.EndTime.UTC().Format(time.RFC3339),
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = queue_publisher.PublishBuildCompleted(ctx, ev)
    }()
}
