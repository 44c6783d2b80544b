package docx

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
)

type RevisionEntry struct {
	Value   string   `json:"value"`
	Sources []string `json:"sources"`
}

// RevisionCatalog is the deduplicated set of revision identifiers declared in the
// settings part, sorted by value. Each entry lists the element names it came from.
type RevisionCatalog struct {
	Entries []RevisionEntry
}

func NewRevisionCatalog(values ...string) RevisionCatalog {
	sources := map[string]map[string]struct{}{}
	for _, v := range values {
		if sources[v] == nil {
			sources[v] = map[string]struct{}{}
		}
		sources[v]["rsid"] = struct{}{}
	}
	return buildCatalog(sources)
}

func (c RevisionCatalog) Len() int {
	return len(c.Entries)
}

func (c RevisionCatalog) Values() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Value
	}
	return out
}

func (c RevisionCatalog) Contains(value string) bool {
	_, found := slices.BinarySearchFunc(c.Entries, value, func(e RevisionEntry, v string) int {
		return strings.Compare(e.Value, v)
	})
	return found
}

func (c RevisionCatalog) MarshalJSON() ([]byte, error) {
	entries := c.Entries
	if entries == nil {
		entries = []RevisionEntry{}
	}
	return json.Marshal(struct {
		Rsids      []RevisionEntry `json:"rsids"`
		TotalCount int             `json:"total_count"`
	}{Rsids: entries, TotalCount: len(entries)})
}

// ExtractRevisionCatalog scans every element whose name contains "rsid" (any case)
// and collects its val attribute. An absent settings part gives an empty catalog.
func ExtractRevisionCatalog(settingsXML []byte) (RevisionCatalog, error) {
	if len(bytes.TrimSpace(settingsXML)) == 0 {
		return RevisionCatalog{}, nil
	}

	sources := map[string]map[string]struct{}{}
	dec := xml.NewDecoder(bytes.NewReader(settingsXML))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RevisionCatalog{}, fmt.Errorf("decode settings.xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || !strings.Contains(strings.ToLower(start.Name.Local), "rsid") {
			continue
		}
		value, ok := attr(start, "val")
		if !ok {
			continue
		}
		if sources[value] == nil {
			sources[value] = map[string]struct{}{}
		}
		sources[value][start.Name.Local] = struct{}{}
	}
	return buildCatalog(sources), nil
}

func buildCatalog(sources map[string]map[string]struct{}) RevisionCatalog {
	entries := make([]RevisionEntry, 0, len(sources))
	for value, tags := range sources {
		names := make([]string, 0, len(tags))
		for tag := range tags {
			names = append(names, tag)
		}
		sort.Strings(names)
		entries = append(entries, RevisionEntry{Value: value, Sources: names})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Value < entries[j].Value })
	return RevisionCatalog{Entries: entries}
}
