package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/fitdesk/gymadmin/internal/app/models"
)

type values struct{ url.Values }

func newValues(p models.ListParams) values {
	v := values{url.Values{}}
	v.num("page", p.Page)
	v.num("size", p.Size)
	v.str("sortBy", p.SortBy)
	v.str("sortOrder", p.SortOrder)
	return v
}

func (v values) str(key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func (v values) num(key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func (v values) id(key string, n int64) {
	if n > 0 {
		v.Set(key, strconv.FormatInt(n, 10))
	}
}

func (v values) flag(key string, b *bool) {
	if b != nil {
		v.Set(key, strconv.FormatBool(*b))
	}
}

func (v values) when(key string, t *time.Time) {
	if t != nil {
		v.Set(key, t.Format(time.RFC3339))
	}
}
