// Package query caches API reads per resource and parameters, and drops them
// again when a mutation touches the resource.
package query

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Key identifies one cached read
type Key struct {
	Resource string
	Params   interface{}
}

// NewKey builds a key. Sub-resources are joined with "/" (e.g. "staff/4").
func NewKey(params interface{}, resource ...string) Key {
	return Key{Resource: strings.Join(resource, "/"), Params: params}
}

// String renders "resource:hash(params)". The resource part is what
// invalidation matches on.
func (k Key) String() string {
	data, err := json.Marshal(k.Params)
	if err != nil {
		return fmt.Sprintf("%s:%v", k.Resource, k.Params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", k.Resource, hash[:16])
}

// matches reports whether key belongs to resource or one of its sub-resources
func matches(key, resource string) bool {
	return strings.HasPrefix(key, resource+":") || strings.HasPrefix(key, resource+"/")
}
