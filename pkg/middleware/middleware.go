package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}

// RequestLoggerConfig logs one entry per request, keyed by the matched route
// so that /api/books/1 and /api/books/2 group together.
func RequestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	log = log.Named("access")
	return middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Log(accessLevel(v), "request",
				zap.String("method", v.Method),
				zap.String("route", c.Path()),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
				zap.Error(v.Error),
			)
			return nil
		},
	}
}

// accessLevel keeps client mistakes out of the error stream.
func accessLevel(v middleware.RequestLoggerValues) zapcore.Level {
	switch {
	case v.Status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case v.Status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case v.Error != nil:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}
