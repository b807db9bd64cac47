package querycache

import (
	"maps"
	"net/url"
	"strings"
)

// Key identifies a cache entry. Two queries with equal keys share one entry
type Key struct {
	Resource string
	ID       string
	Params   map[string]string
}

func NewKey(resource string) Key {
	return Key{Resource: resource}
}

func (k Key) WithID(id string) Key {
	k.ID = id
	k.Params = maps.Clone(k.Params)
	return k
}

// WithParam returns a copy of the key with the param set.
// An empty value is still part of the key, events?search= is not events
func (k Key) WithParam(name, value string) Key {
	params := maps.Clone(k.Params)
	if params == nil {
		params = make(map[string]string, 1)
	}
	params[name] = value
	k.Params = params
	return k
}

// String is the canonical form of the key: resource[/id][?params], params sorted by name
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(url.PathEscape(k.Resource))
	if k.ID != "" {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(k.ID))
	}
	if len(k.Params) > 0 {
		values := make(url.Values, len(k.Params))
		for name, value := range k.Params {
			values.Set(name, value)
		}
		b.WriteByte('?')
		b.WriteString(values.Encode())
	}
	return b.String()
}

func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether k is addressed by prefix.
//
// The resources must match. An empty prefix ID or param set matches anything.
func (k Key) HasPrefix(prefix Key) bool {
	if k.Resource != prefix.Resource {
		return false
	}
	if prefix.ID != "" && prefix.ID != k.ID {
		return false
	}
	for name, value := range prefix.Params {
		if k.Params[name] != value {
			return false
		}
	}
	return true
}
