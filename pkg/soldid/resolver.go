package soldid

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/tcfw/soldid/internal/utils/logging"
	"github.com/tcfw/soldid/pkg/did/w3cdid"
)

// Resolver resolves did:sol DIDs against the cluster named in the DID
type Resolver struct {
	s *settings
}

func NewResolver(opts ...Option) *Resolver {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	return &Resolver{s: s}
}

// Endpoint is the RPC endpoint used for DIDs on cluster
func (r *Resolver) Endpoint(c Cluster) string {
	if e, ok := r.s.endpoints[c]; ok && e != "" {
		return e
	}

	return c.DefaultRPC()
}

func (r *Resolver) client(c Cluster) *rpc.Client {
	return r.s.newClient(r.Endpoint(c))
}

// Resolve returns the DID document for did. A DID without an on-chain
// account resolves to its generative document.
func (r *Resolver) Resolve(ctx context.Context, did string) (*w3cdid.Document, error) {
	logging.Entry().WithField("did", did).Debug("resolving DID")

	id, err := ParseIdentifier(did)
	if err != nil {
		return nil, err
	}

	addr, _, err := id.DataAccount(r.s.programID)
	if err != nil {
		return nil, err
	}

	logging.Entry().
		WithField("cluster", id.Cluster()).
		WithField("authority", id.Authority().String()).
		WithField("account", addr.String()).
		Debug("derived DID data account")

	acct, _, err := fetchAccount(ctx, r.client(id.Cluster()), r.s.programID, addr, r.s.commitment)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return BuildDocument(id, nil), nil
		}
		return nil, err
	}

	return BuildDocument(id, acct), nil
}
