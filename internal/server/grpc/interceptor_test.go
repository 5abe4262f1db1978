package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestSessionInterceptor(t *testing.T) {
	s := newTestServer(newResolver(), &stubSessions{}, stubPinger{})
	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}

	tests := []struct {
		name     string
		ctx      context.Context
		wantUser string
	}{
		{name: "no metadata", ctx: context.Background()},
		{name: "empty token", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.SessionMetadataKey, ""))},
		{name: "unknown token", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.SessionMetadataKey, "nope"))},
		{
			name:     "live token",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.SessionMetadataKey, "live-token")),
			wantUser: "u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := func(ctx context.Context, req interface{}) (interface{}, error) {
				called = true
				id, ok := auth.IdentityFromContext(ctx)
				if tt.wantUser == "" {
					assert.False(t, ok)
					return "ok", nil
				}
				require.True(t, ok)
				assert.Equal(t, tt.wantUser, id.User.ID)
				assert.Equal(t, "live-token", id.SessionID)
				return "ok", nil
			}

			resp, err := s.sessionInterceptor(tt.ctx, nil, info, h)
			require.NoError(t, err)
			assert.True(t, called)
			assert.Equal(t, "ok", resp)
		})
	}
}

func TestSessionToken(t *testing.T) {
	assert.Empty(t, sessionToken(context.Background()))

	md := metadata.Pairs(common.SessionMetadataKey, "first", common.SessionMetadataKey, "second")
	assert.Equal(t, "first", sessionToken(metadata.NewIncomingContext(context.Background(), md)))
}
