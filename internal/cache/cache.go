package cache

import (
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tcfw/soldid/internal/utils/logging"
	"github.com/tcfw/soldid/pkg/did/resolver"
	"github.com/tcfw/soldid/pkg/did/w3cdid"
)

const (
	cacheSize = 1 << 20 * 8

	docPrefix = "doc:"
)

var (
	_ resolver.Cache = (*DocCache)(nil)
)

type entry struct {
	Expires int64            `msgpack:"e"`
	Doc     *w3cdid.Document `msgpack:"d"`
}

// DocCache keeps resolved DID documents on disk until they expire
type DocCache struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

func Open(dir string, ttl time.Duration) (*DocCache, error) {
	c := pebble.NewCache(cacheSize)
	defer c.Unref()

	db, err := pebble.Open(dir, &pebble.Options{Cache: c})
	if err != nil {
		return nil, errors.Wrap(err, "opening document cache")
	}

	return &DocCache{db: db, ttl: ttl, now: time.Now}, nil
}

func key(did string) []byte {
	return []byte(docPrefix + did)
}

func (c *DocCache) Get(did string) (*w3cdid.Document, bool) {
	v, closer, err := c.db.Get(key(did))
	if err != nil {
		if err != pebble.ErrNotFound {
			logging.WithError(err).WithField("did", did).Warn("reading document cache")
		}
		return nil, false
	}
	defer closer.Close()

	e := &entry{}
	if err := msgpack.Unmarshal(v, e); err != nil {
		logging.WithError(err).WithField("did", did).Warn("decoding cached document")
		return nil, false
	}

	if c.now().UnixNano() > e.Expires || e.Doc == nil {
		return nil, false
	}

	return e.Doc, true
}

func (c *DocCache) Put(did string, doc *w3cdid.Document) error {
	if c.ttl <= 0 {
		return nil
	}

	b, err := msgpack.Marshal(&entry{
		Expires: c.now().Add(c.ttl).UnixNano(),
		Doc:     doc,
	})
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}

	return c.db.Set(key(did), b, pebble.Sync)
}

func (c *DocCache) Invalidate(did string) error {
	return c.db.Delete(key(did), pebble.Sync)
}

func (c *DocCache) Close() error {
	return c.db.Close()
}
