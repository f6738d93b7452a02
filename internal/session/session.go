// Package session carries the identity of the caller through a request's
// context.Context.  Nothing here is global: the identity middleware stores
// a Viewer on the request context and the service reads it back.
package session

import "context"

// Viewer is the resolved identity of the caller.  The zero value is an
// anonymous viewer.
type Viewer struct {
	UserID        uint64
	Authenticated bool
}

// Anonymous returns a viewer with no identity.
func Anonymous() Viewer {
	return Viewer{}
}

// User returns an authenticated viewer for id.
func User(id uint64) Viewer {
	return Viewer{UserID: id, Authenticated: id != 0}
}

type viewerKey struct{}

// WithViewer returns a copy of ctx carrying v.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFrom returns the viewer stored in ctx, or an anonymous viewer.
func ViewerFrom(ctx context.Context) Viewer {
	if v, ok := ctx.Value(viewerKey{}).(Viewer); ok {
		return v
	}
	return Anonymous()
}
