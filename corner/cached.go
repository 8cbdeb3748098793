package corner

import "github.com/gogpu/frost/cache"

// masksCacheSize bounds the number of shapes kept. Both effects of a
// session share one shape; a handful covers reconfiguration round trips.
const masksCacheSize = 8

var masksCache = cache.New[Shape, *Masks](masksCacheSize)

// Cached returns the masks for s, generating them on first use. Failed
// generations are not cached.
func Cached(s Shape) (*Masks, error) {
	return masksCache.GetOrCreate(s, func() (*Masks, error) {
		return Generate(s)
	})
}
