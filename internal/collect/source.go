package collect

import "context"

// Source supplies the raw link collections gathered from the portal, one
// ordered list per tab key. Entries may repeat or be empty; downstream
// reconciliation and probing drop those.
type Source interface {
	Links(ctx context.Context) (map[string][]string, error)
}
