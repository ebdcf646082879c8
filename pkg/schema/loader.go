package schema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader retrieves a schema document from a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures document loading strategies.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS sources.
	FileSystem fs.FS
	// HTTPClient backs SourceKindURL sources. When nil and AllowHTTPFallback
	// is set, a default client is constructed.
	HTTPClient *http.Client
	// AllowHTTPFallback enables URL sources without an explicit client.
	AllowHTTPFallback bool
	// RequestTimeout bounds individual HTTP fetches.
	RequestTimeout time.Duration
}
