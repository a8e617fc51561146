package server

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/CK6170/Linviz-go/pca"
)

// DefaultCacheTTL is how long a decomposition stays cached after its last
// write.
const DefaultCacheTTL = 10 * time.Minute

// PCACache memoizes decompositions by dataset content so repeated requests
// for the same table (re-selecting components, re-opening a dataset) do not
// redo the SVD.
type PCACache struct {
	c *ttlcache.Cache[string, *pca.Result]
}

func NewPCACache(ttl time.Duration) *PCACache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := ttlcache.New[string, *pca.Result](
		ttlcache.WithTTL[string, *pca.Result](ttl),
	)
	go c.Start()
	return &PCACache{c: c}
}

// Decompose returns the cached result for key or decomposes rows and stores
// it. key must be datasetKey(rows). hit reports whether the cache served the
// request.
func (pc *PCACache) Decompose(key string, rows [][]float64) (res *pca.Result, hit bool, err error) {
	if item := pc.c.Get(key); item != nil {
		return item.Value(), true, nil
	}
	res, err = pca.Decompose(rows)
	if err != nil {
		return nil, false, err
	}
	pc.c.Set(key, res, ttlcache.DefaultTTL)
	return res, false, nil
}

func (pc *PCACache) Len() int { return pc.c.Len() }

func (pc *PCACache) Stop() { pc.c.Stop() }

// datasetKey returns a stable content hash of a numeric table. Shape is
// hashed too so [[1,2]] and [[1],[2]] differ.
func datasetKey(rows [][]float64) string {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(rows)))
	h.Write(buf[:])
	for _, row := range rows {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(row)))
		h.Write(buf[:])
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
