package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Properties is an open bag of core properties keyed by XML element name.
// Date-valued keys hold a Timestamp; everything else holds a string.
type Properties map[string]any

func (p Properties) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case Timestamp:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Time reports the property as a time only when it parsed.
func (p Properties) Time(key string) (time.Time, bool) {
	switch v := p[key].(type) {
	case Timestamp:
		return v.Time, v.Resolved()
	case time.Time:
		return v, !v.IsZero()
	default:
		return time.Time{}, false
	}
}

// CoreProperties is the typed view of docProps/core.xml. Empty strings and zero
// times mean absent.
type CoreProperties struct {
	Author         string    `json:"author,omitempty"`
	LastModifiedBy string    `json:"last_modified_by,omitempty"`
	Title          string    `json:"title,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Keywords       string    `json:"keywords,omitempty"`
	Description    string    `json:"comments,omitempty"`
	Category       string    `json:"category,omitempty"`
	Revision       string    `json:"revision,omitempty"`
	Created        time.Time `json:"created,omitzero"`
	Modified       time.Time `json:"modified,omitzero"`
	LastPrinted    time.Time `json:"last_printed,omitzero"`
}

// DocumentMetadata keeps both property sources. Accessors prefer the typed
// Extended view and fall back to the raw Core bag; the two are never merged.
type DocumentMetadata struct {
	Core     Properties        `json:"core_properties"`
	Extended CoreProperties    `json:"docx_core_properties"`
	App      map[string]string `json:"app_properties"`
	Custom   map[string]any    `json:"custom_properties"`
}

func (m DocumentMetadata) Author() string {
	return coalesce(m.Extended.Author, m.Core.String("creator"))
}

func (m DocumentMetadata) LastModifiedBy() string {
	return coalesce(m.Extended.LastModifiedBy, m.Core.String("lastModifiedBy"))
}

func (m DocumentMetadata) Revision() string {
	return coalesce(m.Extended.Revision, m.Core.String("revision"))
}

func (m DocumentMetadata) Created() (time.Time, bool) {
	if !m.Extended.Created.IsZero() {
		return m.Extended.Created, true
	}
	return m.Core.Time("created")
}

func (m DocumentMetadata) Modified() (time.Time, bool) {
	if !m.Extended.Modified.IsZero() {
		return m.Extended.Modified, true
	}
	return m.Core.Time("modified")
}

func coalesce(preferred, fallback string) string {
	if strings.TrimSpace(preferred) != "" {
		return preferred
	}
	return fallback
}

var coreDateKeys = map[string]struct{}{"created": {}, "modified": {}, "lastPrinted": {}}

// ExtractCoreProperties reads docProps/core.xml into the raw bag. Dates that do not
// parse keep their source text.
func ExtractCoreProperties(coreXML []byte) (Properties, error) {
	props := Properties{}
	leaves, err := leafElements(coreXML)
	if err != nil {
		return props, fmt.Errorf("decode core.xml: %w", err)
	}
	for _, l := range leaves {
		if _, isDate := coreDateKeys[l.name]; isDate {
			props[l.name] = ParseTimestamp(l.text)
			continue
		}
		props[l.name] = l.text
	}
	return props, nil
}

type coreXML struct {
	Creator        string `xml:"creator"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Keywords       string `xml:"keywords"`
	Description    string `xml:"description"`
	Category       string `xml:"category"`
	Revision       string `xml:"revision"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
	LastPrinted    string `xml:"lastPrinted"`
}

// ExtractExtendedProperties decodes core.xml into the typed view.
func ExtractExtendedProperties(corePart []byte) (CoreProperties, error) {
	if len(bytes.TrimSpace(corePart)) == 0 {
		return CoreProperties{}, nil
	}
	var raw coreXML
	if err := xml.Unmarshal(corePart, &raw); err != nil {
		return CoreProperties{}, fmt.Errorf("unmarshal core.xml: %w", err)
	}
	return CoreProperties{
		Author:         strings.TrimSpace(raw.Creator),
		LastModifiedBy: strings.TrimSpace(raw.LastModifiedBy),
		Title:          strings.TrimSpace(raw.Title),
		Subject:        strings.TrimSpace(raw.Subject),
		Keywords:       strings.TrimSpace(raw.Keywords),
		Description:    strings.TrimSpace(raw.Description),
		Category:       strings.TrimSpace(raw.Category),
		Revision:       strings.TrimSpace(raw.Revision),
		Created:        ParseTimestamp(raw.Created).Time,
		Modified:       ParseTimestamp(raw.Modified).Time,
		LastPrinted:    ParseTimestamp(raw.LastPrinted).Time,
	}, nil
}

// ExtractAppProperties maps every leaf element with non-blank text to its trimmed text.
func ExtractAppProperties(appXML []byte) (map[string]string, error) {
	props := map[string]string{}
	leaves, err := leafElements(appXML)
	if err != nil {
		return props, fmt.Errorf("decode app.xml: %w", err)
	}
	for _, l := range leaves {
		props[l.name] = l.text
	}
	return props, nil
}

type customXML struct {
	Properties []struct {
		Name  string `xml:"name,attr"`
		Value struct {
			XMLName xml.Name
			Text    string `xml:",chardata"`
		} `xml:",any"`
	} `xml:"property"`
}

// ExtractCustomProperties returns each custom property converted from its variant
// type: strings, integers, floats, booleans and file times.
func ExtractCustomProperties(customXMLPart []byte) (map[string]any, error) {
	props := map[string]any{}
	if len(bytes.TrimSpace(customXMLPart)) == 0 {
		return props, nil
	}
	var raw customXML
	if err := xml.Unmarshal(customXMLPart, &raw); err != nil {
		return props, fmt.Errorf("unmarshal custom.xml: %w", err)
	}
	for _, p := range raw.Properties {
		if p.Name == "" {
			continue
		}
		props[p.Name] = variantValue(p.Value.XMLName.Local, strings.TrimSpace(p.Value.Text))
	}
	return props, nil
}

func variantValue(kind, text string) any {
	switch kind {
	case "i1", "i2", "i4", "i8", "int", "ui1", "ui2", "ui4", "ui8", "uint":
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return v
		}
	case "r4", "r8", "decimal":
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return v
		}
	case "bool":
		if v, err := strconv.ParseBool(text); err == nil {
			return v
		}
	case "filetime", "date":
		if ts := ParseTimestamp(text); ts.Resolved() {
			return ts.Time
		}
	}
	return text
}

type leaf struct {
	name string
	text string
}

// leafElements returns elements without element children whose text is not blank,
// in document order.
func leafElements(raw []byte) ([]leaf, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	type frame struct {
		name     string
		text     strings.Builder
		children bool
	}
	var (
		stack []*frame
		out   []leaf
	)
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].children = true
			}
			stack = append(stack, &frame{name: t.Name.Local})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if text := strings.TrimSpace(f.text.String()); !f.children && text != "" {
				out = append(out, leaf{name: f.name, text: text})
			}
		}
	}
}
