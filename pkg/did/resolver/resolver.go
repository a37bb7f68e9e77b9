package resolver

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/tcfw/soldid/internal/utils/logging"
	"github.com/tcfw/soldid/pkg/did"
	"github.com/tcfw/soldid/pkg/did/w3cdid"
	"github.com/tcfw/soldid/pkg/soldid"
)

var (
	ErrUnknownMethod = errors.New("unknown did method")

	_ did.Resolver = (*Resolver)(nil)
)

const maxConcurrentResolves = 4

// Cache stores resolved documents keyed by DID
type Cache interface {
	Get(did string) (*w3cdid.Document, bool)
	Put(did string, doc *w3cdid.Document) error
	Invalidate(did string) error
}

type Resolver struct {
	sol   *soldid.Resolver
	cache Cache
}

type Option func(*Resolver)

func WithCache(c Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

func NewResolver(sol *soldid.Resolver, opts ...Option) *Resolver {
	r := &Resolver{sol: sol}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve resolves a public DID ID via any supported DID method
func (r *Resolver) Resolve(did w3cdid.URL) (*w3cdid.Document, error) {
	return r.ResolveContext(context.Background(), did)
}

func (r *Resolver) ResolveContext(ctx context.Context, did w3cdid.URL) (*w3cdid.Document, error) {
	did = did.DID()

	if r.cache != nil {
		if doc, ok := r.cache.Get(string(did)); ok {
			logging.Entry().WithField("did", did).Debug("resolved from cache")
			return doc, nil
		}
	}

	var doc *w3cdid.Document
	var err error

	switch did.Method() {
	case soldid.MethodName:
		doc, err = r.sol.Resolve(ctx, string(did))
	default:
		return nil, ErrUnknownMethod
	}
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Put(string(did), doc); err != nil {
			logging.WithError(err).WithField("did", did).Warn("caching resolved document")
		}
	}

	return doc, nil
}

// ResolveMany resolves dids concurrently. Documents are returned in the
// order of dids; the first failure aborts the rest.
func (r *Resolver) ResolveMany(ctx context.Context, dids []w3cdid.URL) ([]*w3cdid.Document, error) {
	docs := make([]*w3cdid.Document, len(dids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolves)

	for i, d := range dids {
		i, d := i, d
		g.Go(func() error {
			doc, err := r.ResolveContext(gctx, d)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return docs, nil
}

// Invalidate drops any cached document for did
func (r *Resolver) Invalidate(did w3cdid.URL) error {
	if r.cache == nil {
		return nil
	}

	return r.cache.Invalidate(string(did.DID()))
}
