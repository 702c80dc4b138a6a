package server

import (
	"context"

	"tasksphere/internal/services"
	"tasksphere/internal/ws"
)

// wsAuthenticator adapts the auth service to the streaming transport's
// handshake interface.
type wsAuthenticator struct {
	auth *services.AuthService
}

func (a wsAuthenticator) Authenticate(ctx context.Context, token string) (ws.Principal, error) {
	u, err := a.auth.AuthenticateToken(ctx, token)
	if err != nil {
		return ws.Principal{}, err
	}
	return ws.Principal{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}, nil
}

// wsAuthorizer adapts channel-subscription decisions to the transport.
type wsAuthorizer struct {
	authz *services.AuthzService
}

func (a wsAuthorizer) Authorize(ctx context.Context, p ws.Principal, channel string) bool {
	return a.authz.CanSubscribe(ctx, p.ID, p.Role, channel)
}

// NewRealtimeAuthorizer wraps the authorization service for hub construction.
func NewRealtimeAuthorizer(authz *services.AuthzService) ws.Authorizer {
	return wsAuthorizer{authz: authz}
}
