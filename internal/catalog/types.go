package catalog

// DefaultDocumentTitle is the sentinel used when a catalog record has no title.
const DefaultDocumentTitle = "Untitled Document"

// Document is a catalog document entry. Records coming off the wire are
// decoded into this explicit shape at the boundary, with defaulting rules
// applied once here rather than ad hoc in the adapters.
type Document struct {
	// ID is the catalog record identifier (doubles as the chunk's parent document id).
	ID string
	// Title is the document title; never empty (missing titles default to DefaultDocumentTitle).
	Title string
	// ThemeIDs are the theme records this document is a member of.
	ThemeIDs []string
	// ChunkCount is the number of indexed chunks, as reported by the catalog.
	ChunkCount int
}

// Theme is a catalog theme entry.
type Theme struct {
	// ID is the catalog record identifier.
	ID string
	// Name is the human-readable theme label used in request scopes.
	Name string
	// DocumentIDs are the documents tagged with this theme.
	DocumentIDs []string
}

// record is the wire shape of a catalog record: an opaque id plus a
// loosely-typed field map.
type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// listResponse is the wire shape of a catalog listing page.
type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// stringField extracts a string field, returning fallback when the field
// is absent or not a string.
func stringField(fields map[string]any, key, fallback string) string {
	if v, ok := fields[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// stringSliceField extracts a list-of-strings field; absent or malformed
// values yield nil.
func stringSliceField(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// intField extracts a numeric field as int; JSON numbers decode as float64.
func intField(fields map[string]any, key string) int {
	if v, ok := fields[key].(float64); ok {
		return int(v)
	}
	return 0
}
