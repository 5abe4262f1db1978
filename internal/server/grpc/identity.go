package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const identityServiceName = "recipekeeper.v1.Identity"

const (
	WhoAmIMethod = "/" + identityServiceName + "/WhoAmI"
	LogoutMethod = "/" + identityServiceName + "/Logout"
)

// identityServer is served by GRPCServer. The messages are well-known types,
// so the service is registered by hand instead of through generated stubs.
type identityServer interface {
	WhoAmI(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	Logout(ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error)
}

var identityServiceDesc = grpc.ServiceDesc{
	ServiceName: identityServiceName,
	HandlerType: (*identityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
		{MethodName: "Logout", Handler: logoutHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "recipekeeper/v1/identity.proto",
}

func whoAmIHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(identityServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WhoAmIMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(identityServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func logoutHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(identityServer).Logout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: LogoutMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(identityServer).Logout(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// WhoAmI returns the caller's account without its password digest.
func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not signed in")
	}

	fields := map[string]interface{}{
		"id":        id.User.ID,
		"email":     id.User.Email,
		"name":      nil,
		"createdAt": id.User.CreatedAt.UTC().Format(time.RFC3339),
	}
	if id.User.Name != nil {
		fields["name"] = *id.User.Name
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		s.logger.Error(ctx, "cannot encode identity", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// Logout ends the caller's session if there is one and always tells the
// client to drop its token.
func (s *GRPCServer) Logout(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if id, ok := auth.IdentityFromContext(ctx); ok {
		if err := s.sessions.Delete(ctx, id.SessionID); err != nil {
			s.logger.Error(ctx, "logout failed to delete session", "error", err)
		}
	}
	s.clearSession(ctx)
	return &emptypb.Empty{}, nil
}
