package index

// Query selects entities by the conjunction of the dimensions that were
// explicitly set. The zero value matches nothing.
type Query struct {
	base       *string
	quoteCur   *string
	collateral *string
	client     *string
	account    *string
}

func NewQuery() Query { return Query{} }

func (q Query) WithBase(base string) Query {
	q.base = &base
	return q
}

func (q Query) WithQuote(quoteCur string) Query {
	q.quoteCur = &quoteCur
	return q
}

func (q Query) WithCollateral(collateral string) Query {
	q.collateral = &collateral
	return q
}

func (q Query) WithClient(client string) Query {
	q.client = &client
	return q
}

func (q Query) WithAccount(account string) Query {
	q.account = &account
	return q
}
