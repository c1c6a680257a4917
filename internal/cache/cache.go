// Package cache provides the search result cache consulted before any
// engine routing. Keys are engine-agnostic query signatures so a repeat
// search is served without consuming provider budget.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/prospector/internal/model"
)

// Cache stores search results keyed by query signature.
type Cache interface {
	// Get returns the cached records for key, reporting whether the key
	// was present.
	Get(ctx context.Context, key string) ([]model.CompanyRecord, bool, error)
	// Set stores records under key for ttl.
	Set(ctx context.Context, key string, records []model.CompanyRecord, ttl time.Duration) error
}

// Key derives the engine-agnostic cache signature from normalized query
// text plus the filter fields that change results. Identical searches hash
// identically regardless of field ordering in the filters.
func Key(query string, filters model.FilterState) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(strings.TrimSpace(query)))
	sb.WriteByte('|')
	writeSorted(&sb, filters.Verticals)
	sb.WriteByte('|')
	writeSorted(&sb, filters.Regions)
	sb.WriteByte('|')
	writeSorted(&sb, filters.SizeBuckets)
	sb.WriteByte('|')
	writeSorted(&sb, filters.SignalTypes)
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatBool(filters.ExcludeExisting))

	digest := sha256.Sum256([]byte(sb.String()))
	return "search:" + hex.EncodeToString(digest[:])
}

func writeSorted(sb *strings.Builder, values []string) {
	sorted := make([]string, len(values))
	for i, v := range values {
		sorted[i] = strings.ToLower(strings.TrimSpace(v))
	}
	sort.Strings(sorted)
	sb.WriteString(strings.Join(sorted, ","))
}
