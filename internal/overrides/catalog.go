// Package overrides applies human-curated platform links after fuzzy
// linking. Each platform has a <platform>_manual.json file mapping canonical
// titles to a payload; wrapping the payload in a list forces it through even
// when the automatic pass already linked the item.
package overrides

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"animeapi/internal/anime"
	"animeapi/internal/sources"
)

// Platforms lists the platforms that accept manual overrides, in the order
// the pipeline links them.
var Platforms = []string{"kaize", "nautiljon", "otakotaku", "silveryasha"}

var platformFields = map[string][]string{
	"kaize":       {"kaize", "kaize_id"},
	"nautiljon":   {"nautiljon", "nautiljon_id"},
	"otakotaku":   {"otakotaku"},
	"silveryasha": {"silveryasha"},
}

// Assignment sets one record field. An empty Value clears the field.
type Assignment struct {
	Field anime.Field
	Value string
}

// Override is one manual mapping. Key is the platform identifier it links,
// compared against the unlinked list for non-forced overrides.
type Override struct {
	Title   string
	Force   bool
	Key     string
	Payload []Assignment
}

// Catalog holds the overrides of one platform in file order.
type Catalog struct {
	Platform string
	Path     string
	Entries  []Override
}

// Load reads a manual override file. A missing or empty file yields an empty
// catalog; malformed JSON, schema violations, and fields the platform does
// not own are errors.
func Load(path, platform string) (*Catalog, error) {
	if _, ok := platformFields[platform]; !ok {
		return nil, fmt.Errorf("platform %q does not accept manual overrides", platform)
	}
	catalog := &Catalog{Platform: platform, Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return catalog, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	entries, err := Parse(data, platform)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	catalog.Entries = entries
	return catalog, nil
}

// Parse decodes a manual override document, keeping entries in file order.
func Parse(data []byte, platform string) ([]Override, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(data) == 0 {
		return nil, nil
	}
	if _, err := sources.ValidateJSON(sources.SchemaManual, data); err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	var entries []Override
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		title, _ := token.(string)
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("entry %q: %w", title, err)
		}
		entry, err := parseEntry(title, raw, platform)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", title, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(title string, raw json.RawMessage, platform string) (Override, error) {
	entry := Override{Title: title}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return Override{}, err
		}
		// only the first payload of a forced entry is used
		raw = list[0]
		entry.Force = true
	}

	allowed := platformFields[platform]
	values := map[string]any{}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&values); err != nil {
			return Override{}, err
		}
	} else {
		var scalar any
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&scalar); err != nil && !errors.Is(err, io.EOF) {
			return Override{}, err
		}
		values[allowed[0]] = scalar
	}

	for _, name := range allowed {
		value, ok := values[name]
		if !ok {
			continue
		}
		field, _ := anime.FieldByName(name)
		text := scalarString(value)
		if err := field.Set(&anime.Record{}, text); err != nil {
			return Override{}, err
		}
		entry.Payload = append(entry.Payload, Assignment{Field: field, Value: text})
		if name == allowed[0] {
			entry.Key = strings.TrimSpace(text)
		}
	}
	for name := range values {
		if !slices.Contains(allowed, name) {
			return Override{}, fmt.Errorf("field %q is not a %s field", name, platform)
		}
	}
	return entry, nil
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
