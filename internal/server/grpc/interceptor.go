package grpc

import (
	"context"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const requestIDHeader = common.RequestIDMetadataKey

// requestIDInterceptor puts the caller's correlation id, or a fresh one, on
// the context and echoes it back in the response header.
func (s *HealthServer) requestIDInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var rqid string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(requestIDHeader)
		if len(values) > 0 {
			rqid = values[0]
		}
	}
	if len(rqid) == 0 {
		rqid = audit.NewCorrelationID()
	}

	ctx = audit.WithRequestID(ctx, rqid)
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, rqid))

	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "grpc call failed", "method", info.FullMethod, "error", err)
	} else {
		s.logger.Debug(ctx, "grpc call", "method", info.FullMethod)
	}
	return resp, err
}
