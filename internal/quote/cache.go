package quote

// Cache keeps the latest quote per instrument, reachable by pair id and by
// currency pair in both orientations. There is no eviction: the cache is
// bounded by the number of distinct instruments the feed publishes.
//
// The cache is not internally synchronized. It expects the single-writer
// model of the engine loop: one goroutine performs all Upsert calls.
type Cache struct {
	byPair      map[string]*BidAsk
	byBaseQuote map[string]map[string]*BidAsk
	byQuoteBase map[string]map[string]*BidAsk
}

func NewCache() *Cache {
	return &Cache{
		byPair:      make(map[string]*BidAsk),
		byBaseQuote: make(map[string]map[string]*BidAsk),
		byQuoteBase: make(map[string]map[string]*BidAsk),
	}
}

// Upsert publishes a quote, replacing any previous quote for the same pair
// id in all three maps. The stored value is shared, never edited in place.
func (c *Cache) Upsert(b BidAsk) {
	shared := &b
	c.byPair[b.AssetPair] = shared

	bq, ok := c.byBaseQuote[b.Base]
	if !ok {
		bq = make(map[string]*BidAsk)
		c.byBaseQuote[b.Base] = bq
	}
	bq[b.Quote] = shared

	qb, ok := c.byQuoteBase[b.Quote]
	if !ok {
		qb = make(map[string]*BidAsk)
		c.byQuoteBase[b.Quote] = qb
	}
	qb[b.Base] = shared
}

// GetByID returns the latest quote for a pair id.
func (c *Cache) GetByID(assetPair string) (*BidAsk, bool) {
	b, ok := c.byPair[assetPair]
	return b, ok
}

// GetBaseQuote returns the quote whose base is a and quote is b, as stored.
func (c *Cache) GetBaseQuote(base, quoteCur string) (*BidAsk, bool) {
	bq, ok := c.byBaseQuote[base]
	if !ok {
		return nil, false
	}
	b, ok := bq[quoteCur]
	return b, ok
}

// GetQuoteBase returns the quote whose quote currency is q and base is b,
// as stored (no inversion).
func (c *Cache) GetQuoteBase(quoteCur, base string) (*BidAsk, bool) {
	qb, ok := c.byQuoteBase[quoteCur]
	if !ok {
		return nil, false
	}
	b, ok := qb[base]
	return b, ok
}

// GetByCurrencies resolves a quote relating two currencies. The (a,b)
// orientation is tried first and returned verbatim; if only the (b,a)
// orientation exists, the reversed quote is returned (see BidAsk.Reverse).
func (c *Cache) GetByCurrencies(a, b string) (*BidAsk, bool) {
	if direct, ok := c.GetBaseQuote(a, b); ok {
		return direct, true
	}
	if inverse, ok := c.GetBaseQuote(b, a); ok {
		return inverse.Reverse(), true
	}
	return nil, false
}
