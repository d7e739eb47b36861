package notice

// KeyFunc returns the identity used to match a notice against the snapshot.
type KeyFunc func(CategorizedNotice) string

// TitleKey identifies a notice by title alone.
func TitleKey(n CategorizedNotice) string {
	return n.Key()
}

// Diff returns the elements of current whose key does not appear in prior,
// in current's order. Duplicates within current are each checked on their own.
func Diff(current, prior []CategorizedNotice, key KeyFunc) []CategorizedNotice {
	seen := make(map[string]struct{}, len(prior))
	for _, p := range prior {
		seen[key(p)] = struct{}{}
	}

	out := make([]CategorizedNotice, 0)
	for _, c := range current {
		if _, ok := seen[key(c)]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// NewNotices is Diff keyed on title.
func NewNotices(current, prior []CategorizedNotice) []CategorizedNotice {
	return Diff(current, prior, TitleKey)
}
