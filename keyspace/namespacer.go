package keyspace

const (
	sessionSegment = "session"
	counterSuffix  = "INCR_ID"
	credsSuffix    = "creds"
)

// Namespacer holds the precomputed keys of one session. The zero value is
// not useful; build one with [New].
type Namespacer struct {
	id      string
	creds   string
	buckets [categoryCount]string
}

// New derives all keys for session id under namespace.
func New(namespace, id string) Namespacer {
	base := namespace + ":" + sessionSegment + ":" + id
	n := Namespacer{
		id:    id,
		creds: base + ":" + credsSuffix,
	}
	for c := Category(0); c < categoryCount; c++ {
		n.buckets[c] = base + ":" + categoryNames[c]
	}
	return n
}

// CounterKey returns the key INCR'd to allocate session ids in namespace.
func CounterKey(namespace string) string {
	return namespace + ":" + sessionSegment + ":" + counterSuffix
}

// ID returns the session id the keys were derived from.
func (n Namespacer) ID() string {
	return n.id
}

// Creds returns the credential key.
func (n Namespacer) Creds() string {
	return n.creds
}

// Bucket returns the hash key holding items of category c. It returns ""
// for categories outside the closed set.
func (n Namespacer) Bucket(c Category) string {
	if !c.Valid() {
		return ""
	}
	return n.buckets[c]
}

// Buckets returns every bucket key in category order.
func (n Namespacer) Buckets() []string {
	out := make([]string, categoryCount)
	copy(out, n.buckets[:])
	return out
}

// All returns the credential key followed by every bucket key.
func (n Namespacer) All() []string {
	out := make([]string, 0, categoryCount+1)
	out = append(out, n.creds)
	return append(out, n.buckets[:]...)
}
