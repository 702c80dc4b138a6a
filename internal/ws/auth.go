package ws

import (
	"context"
	"fmt"
	"strings"
)

// Principal is the authenticated identity bound to a session at handshake.
// It never changes for the lifetime of the session.
type Principal struct {
	ID    int64
	Email string
	Name  string
	Role  string
}

// Authenticator resolves a bearer token to a principal. Token minting and
// validation live outside the transport.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// Authorizer decides whether a principal may subscribe to a channel. The
// decision is taken once at SUBSCRIBE time.
type Authorizer interface {
	Authorize(ctx context.Context, p Principal, channel string) bool
}

// Destination prefixes
const (
	TopicPrefix = "/topic/"
	UserPrefix  = "/user/"
)

// ChannelFromDestination strips the broadcast prefix: "/topic/project.7"
// yields "project.7". User-addressed destinations have no channel.
func ChannelFromDestination(destination string) (string, bool) {
	if strings.HasPrefix(destination, TopicPrefix) {
		return strings.TrimPrefix(destination, TopicPrefix), true
	}
	return "", false
}

// UserDestination builds a principal-addressed destination.
func UserDestination(principalID int64, suffix string) string {
	return fmt.Sprintf("%s%d/%s", UserPrefix, principalID, strings.TrimPrefix(suffix, "/"))
}

// destinationPrincipal extracts the {id} segment of a "/user/{id}/…"
// destination. Returns false for broadcast destinations.
func destinationPrincipal(destination string) (int64, bool) {
	if !strings.HasPrefix(destination, UserPrefix) {
		return 0, false
	}
	rest := strings.TrimPrefix(destination, UserPrefix)
	idPart, _, _ := strings.Cut(rest, "/")
	var id int64
	if _, err := fmt.Sscanf(idPart, "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
