package connect

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

const (
	// RequestIDHeader is the header name carrying the request ID.
	RequestIDHeader = "X-Request-Id"
)

// NewLoggingInterceptor creates an interceptor that tags each request with
// an ID and logs its procedure, outcome and latency.
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			// Client-side calls pass through untouched
			if req.Spec().IsClient {
				return next(ctx, req)
			}

			requestID := req.Header().Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			logger := zlog.With().
				Str("request_id", requestID).
				Str("procedure", req.Spec().Procedure).
				Logger()
			ctx = logger.WithContext(ctx)

			started := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(started)

			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(RequestIDHeader, requestID)
				}
				logger.Info().Str("code", connect.CodeOf(err).String()).Dur("elapsed", elapsed).Msg("rpc failed")
				return nil, err
			}

			resp.Header().Set(RequestIDHeader, requestID)
			logger.Info().Dur("elapsed", elapsed).Msg("rpc completed")
			return resp, nil
		}
	}
}
