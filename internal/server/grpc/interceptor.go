package grpc

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// sessionInterceptor resolves the "session" metadata value and attaches the
// identity to the handler context. It never rejects a call; handlers that
// need a signed-in user check auth.IdentityFromContext themselves.
func (s *GRPCServer) sessionInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	res := s.authn.Authenticate(ctx, sessionToken(ctx))

	if res.ClearToken {
		s.clearSession(ctx)
	}
	if res.Identity != nil {
		ctx = auth.WithIdentity(ctx, res.Identity)
	}

	return handler(ctx, req)
}

func sessionToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.SessionMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// clearSession tells the client to forget its session token.
func (s *GRPCServer) clearSession(ctx context.Context) {
	if err := grpc.SetHeader(ctx, metadata.Pairs(common.SessionClearHeader, "1")); err != nil {
		s.logger.Debug(ctx, "cannot set session-clear header", "error", err)
	}
}
