package resolver

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/soldid/pkg/did/w3cdid"
	"github.com/tcfw/soldid/pkg/soldid"
)

type memCache struct {
	mu   sync.Mutex
	docs map[string]*w3cdid.Document
}

func newMemCache() *memCache {
	return &memCache{docs: map[string]*w3cdid.Document{}}
}

func (c *memCache) Get(did string) (*w3cdid.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[did]
	return d, ok
}

func (c *memCache) Put(did string, doc *w3cdid.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[did] = doc
	return nil
}

func (c *memCache) Invalidate(did string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, did)
	return nil
}

// emptyChain answers every getAccountInfo with a missing account
func emptyChain(t *testing.T) (*httptest.Server, *int32) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := struct {
			ID json.RawMessage `json:"id"`
		}{}
		json.NewDecoder(r.Body).Decode(&req)
		atomic.AddInt32(&calls, 1)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"context": map[string]int{"slot": 1}, "value": nil},
		})
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func testDID(seed byte) string {
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	key := solana.PrivateKey(ed25519.NewKeyFromSeed(s)).PublicKey()

	return soldid.NewIdentifier(key, soldid.ClusterLocalnet).String()
}

func newTestResolver(t *testing.T, opts ...Option) (*Resolver, *int32) {
	srv, calls := emptyChain(t)
	sol := soldid.NewResolver(soldid.WithEndpoint(soldid.ClusterLocalnet, srv.URL))
	return NewResolver(sol, opts...), calls
}

func TestResolveUnknownMethod(t *testing.T) {
	r, calls := newTestResolver(t)

	_, err := r.Resolve(w3cdid.URL("did:web:example.com"))
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestResolveStripsFragment(t *testing.T) {
	r, _ := newTestResolver(t)
	did := testDID(1)

	doc, err := r.ResolveContext(context.Background(), w3cdid.URL(did+"#default"))
	require.NoError(t, err)
	assert.Equal(t, did, doc.ID)
}

func TestResolveUsesCache(t *testing.T) {
	c := newMemCache()
	r, calls := newTestResolver(t, WithCache(c))
	did := w3cdid.URL(testDID(1))

	first, err := r.Resolve(did)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	second, err := r.Resolve(did + "#default")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, first, second)

	require.NoError(t, r.Invalidate(did))
	_, ok := c.Get(string(did))
	assert.False(t, ok)

	_, err = r.Resolve(did)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestResolveMany(t *testing.T) {
	r, calls := newTestResolver(t)

	dids := []w3cdid.URL{}
	for i := byte(1); i <= 6; i++ {
		dids = append(dids, w3cdid.URL(testDID(i)))
	}

	docs, err := r.ResolveMany(context.Background(), dids)
	require.NoError(t, err)
	require.Len(t, docs, len(dids))
	for i, d := range docs {
		assert.Equal(t, string(dids[i]), d.ID)
	}
	assert.Equal(t, int32(len(dids)), atomic.LoadInt32(calls))

	_, err = r.ResolveMany(context.Background(), append(dids, "did:sol:bad"))
	assert.ErrorIs(t, err, soldid.ErrInvalidDidFormat)
}
