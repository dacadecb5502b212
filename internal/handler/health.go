package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers liveness probes from load balancers and monitoring.  It
// deliberately touches no dependency: a degraded Redis or broker must not
// take the service out of rotation.
func Health(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "roster-resolution"})
}
