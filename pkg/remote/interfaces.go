// Package remote defines the boundary to the remote content store. The
// core never talks to a network itself; it goes through a Gateway
// session obtained from a Dialer, and providers plug in through the
// registry the same way copy sources do in similar tools.
package remote

import (
	"context"
	"strings"

	"github.com/walteh/presspatch/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// Fields are the attributes of a document to create.
type Fields struct {
	Title   string
	Content string
	Status  string // e.g. "publish", "draft"
	Kind    string // e.g. "post", "page"
}

// DocumentInfo is a listing entry for a remote document.
type DocumentInfo struct {
	ID    string
	Slug  string
	Title string
}

// Gateway performs actual create/fetch/write calls against the remote
// content store. Implementations own all transport and auth concerns
// and must classify failures with ErrConnectivity / ErrNotFound so the
// coordinator can tell a dead transport from a rejected item.
type Gateway interface {
	// Name returns the name of the provider (e.g. "wpcli")
	Name() string
	// CreateDocument creates a new document and returns its id
	CreateDocument(ctx context.Context, fields Fields) (string, error)
	// FetchDocument returns the raw text content of a document
	FetchDocument(ctx context.Context, id string) (string, error)
	// WriteDocument replaces the raw text content of a document
	WriteDocument(ctx context.Context, id string, raw string) error
	// ListDocuments lists documents available for bulk selection
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
}

// Session is a Gateway bound to one exclusively-owned transport
// connection. Each batch worker dials its own session and releases it
// on every exit path.
type Session interface {
	Gateway
	Close() error
}

// Dialer opens gateway sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// Factory builds a dialer for a configured server.
type Factory func(ctx context.Context, srv config.ServerDefinition) (Dialer, error)

var registry = map[string]Factory{}

// RegisterFactory registers a provider factory under a name.
func RegisterFactory(name string, factory Factory) {
	registry[name] = factory
}

// NewDialer builds a dialer for the provider the server definition
// names.
func NewDialer(ctx context.Context, srv config.ServerDefinition) (Dialer, error) {
	factory, ok := registry[srv.Provider]
	if !ok {
		options := []string{}
		for k := range registry {
			options = append(options, k)
		}
		return nil, errors.Errorf("provider %s not found, options: %s", srv.Provider, strings.Join(options, ", "))
	}
	return factory(ctx, srv)
}
