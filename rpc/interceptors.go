package rpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/spooky-finn/cryptobridge/helpers"
	"github.com/spooky-finn/cryptobridge/infrastructure/logger"
	promclient "github.com/spooky-finn/cryptobridge/infrastructure/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDHeader = "x-request-id"

func recoveryInterceptor(
	ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("method", info.FullMethod).
				WithField("panic", r).
				WithField("stack", string(debug.Stack())).
				Error("handler panicked")
			resp, err = nil, status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

// loggingInterceptor tags every call with a request id, taken from the caller when present.
// With debug set the request body is logged too.
func loggingInterceptor(debug bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := incomingRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)

		entry := log.WithFields(logger.Fields{
			"request_id": requestID,
			"method":     info.FullMethod,
			"code":       status.Code(err).String(),
			"duration":   time.Since(start),
		})
		if debug {
			entry = entry.WithField("request", helpers.ToJsonString(req))
		}

		if err != nil && status.Code(err) == codes.Internal {
			entry.WithError(err).Error("rpc failed")
		} else {
			entry.Info("rpc handled")
		}
		return resp, err
	}
}

func metricsInterceptor(metrics *promclient.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		metrics.RPCRequest(status.Code(err).String())
		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(requestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}
