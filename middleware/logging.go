package middleware

import (
	"time"

	"github.com/NightSight1044/legalCRM1/logger"
	"github.com/NightSight1044/legalCRM1/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs every request through zap and records it in the
// request metrics. Routes are labelled by their pattern, not the raw path.
func RequestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordRequest(v.Method, route, v.Status, v.Latency.Seconds())

			l := logger.WithRequest(zap.L(), v.Method, v.URIPath, v.RequestID)
			if tenant := GetTenant(c); tenant != nil {
				l = logger.WithTenant(l, tenant.FirmID, tenant.ProfileID)
			}
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
				zap.String("remote_ip", v.RemoteIP),
			}

			switch {
			case v.Status >= 500:
				l.Error("request failed", append(fields, zap.Error(v.Error))...)
			case v.Status >= 400:
				l.Warn("request rejected", fields...)
			default:
				l.Info("request", fields...)
			}
			return nil
		},
	})
}
