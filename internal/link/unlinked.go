package link

// Unlinked is a dataset item that neither pass could attach. Key is the
// platform identifier manual overrides refer to: the slug for Kaize and
// Nautiljon, the numeric ID for the others.
type Unlinked struct {
	Platform string `json:"platform"`
	Title    string `json:"title"`
	Key      string `json:"key"`
	Reason   string `json:"reason,omitempty"`
}

// Keys returns the set of unlinked keys.
func Keys(entries []Unlinked) map[string]struct{} {
	keys := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		keys[entry.Key] = struct{}{}
	}
	return keys
}

// Without returns entries whose key is not in removed, preserving order.
func Without(entries []Unlinked, removed map[string]struct{}) []Unlinked {
	if len(removed) == 0 {
		return entries
	}
	out := make([]Unlinked, 0, len(entries))
	for _, entry := range entries {
		if _, drop := removed[entry.Key]; drop {
			continue
		}
		out = append(out, entry)
	}
	return out
}
