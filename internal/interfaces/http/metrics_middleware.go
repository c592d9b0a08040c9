package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPObserver registra cada petición (lo implementa metrics.Metrics).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// MetricsMiddleware mide duración y status por ruta registrada (no por path, para acotar cardinalidad).
func MetricsMiddleware(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		obs.ObserveHTTP(c.Method(), route, status, time.Since(start))
		return err
	}
}
