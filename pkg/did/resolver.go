package did

import (
	"context"

	"github.com/tcfw/soldid/pkg/did/w3cdid"
)

// Resolver allows for a DID to be resolved agnostically any given source
type Resolver interface {
	Resolve(did w3cdid.URL) (*w3cdid.Document, error)
	ResolveContext(ctx context.Context, did w3cdid.URL) (*w3cdid.Document, error)
}
