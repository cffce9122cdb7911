package index

// Indexable is the capability an entity must provide to live in the
// secondary index. Every key except the id is optional: a key reported as
// absent is simply not indexed in that dimension.
type Indexable interface {
	ID() string
	BaseKey() (string, bool)
	QuoteKey() (string, bool)
	CollateralKey() (string, bool)
	ClientKey() (string, bool)
	AccountKey() (string, bool)
}

type bucketMap map[string]map[string]struct{}

// Index maintains five independent attribute→id-set dimensions over a set
// of entities. It answers conjunctive queries over any subset of the
// dimensions.
type Index struct {
	base       bucketMap
	quoteCur   bucketMap
	collateral bucketMap
	client     bucketMap
	account    bucketMap
}

func New() *Index {
	return &Index{
		base:       make(bucketMap),
		quoteCur:   make(bucketMap),
		collateral: make(bucketMap),
		client:     make(bucketMap),
		account:    make(bucketMap),
	}
}

// Add indexes the entity id under every key it reports.
func (ix *Index) Add(e Indexable) {
	id := e.ID()
	addKey(ix.base, id, e.BaseKey)
	addKey(ix.quoteCur, id, e.QuoteKey)
	addKey(ix.collateral, id, e.CollateralKey)
	addKey(ix.client, id, e.ClientKey)
	addKey(ix.account, id, e.AccountKey)
}

// Remove deletes the id from every bucket of every dimension. This walk is
// O(number of distinct bucket values) on purpose: it keeps Add free of a
// reverse id→keys map. If that trade-off is ever revisited, the reverse
// map is a behavior change to call out, not a bug fix.
func (ix *Index) Remove(id string) {
	removeKey(ix.base, id)
	removeKey(ix.quoteCur, id)
	removeKey(ix.collateral, id)
	removeKey(ix.client, id)
	removeKey(ix.account, id)
}

// Query intersects the buckets selected by the predicate. Dimensions left
// unset contribute nothing. If no selected dimension yields a non-empty
// bucket -- including a predicate with no dimensions at all -- the result
// is empty, never "all ids". With exactly one contributing bucket that
// bucket is returned as-is; callers must treat the result as read-only.
func (ix *Index) Query(q Query) map[string]struct{} {
	var sets []map[string]struct{}
	collect := func(buckets bucketMap, key *string) {
		if key == nil {
			return
		}
		if set, ok := buckets[*key]; ok && len(set) > 0 {
			sets = append(sets, set)
		}
	}
	collect(ix.base, q.base)
	collect(ix.quoteCur, q.quoteCur)
	collect(ix.collateral, q.collateral)
	collect(ix.account, q.account)
	collect(ix.client, q.client)

	if len(sets) == 0 {
		return map[string]struct{}{}
	}
	if len(sets) == 1 {
		return sets[0]
	}

	result := make(map[string]struct{}, len(sets[0]))
	for id := range sets[0] {
		result[id] = struct{}{}
	}
	for _, set := range sets[1:] {
		for id := range result {
			if _, ok := set[id]; !ok {
				delete(result, id)
			}
		}
	}
	return result
}

func addKey(buckets bucketMap, id string, key func() (string, bool)) {
	value, ok := key()
	if !ok {
		return
	}
	set, ok := buckets[value]
	if !ok {
		set = make(map[string]struct{})
		buckets[value] = set
	}
	set[id] = struct{}{}
}

func removeKey(buckets bucketMap, id string) {
	for _, set := range buckets {
		delete(set, id)
	}
}
