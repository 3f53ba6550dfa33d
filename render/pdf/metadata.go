package pdf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is added to the document of one input file. It is read
// from a YAML or JSON file.
type Metadata struct {
	// Info are the entries of the document information dictionary:
	// Title, Author, Subject, Keywords, Creator or Producer.
	Info map[string]string `yaml:"metadata"`
	// PageLabels has the label of each page, in order, if not empty.
	PageLabels []string      `yaml:"page_labels"`
	Outline    []OutlineItem `yaml:"outline"`
	// OutlineOpenLevel is the level up to which outline items
	// are expanded. 0 expands none.
	OutlineOpenLevel int `yaml:"outline_open_level"`
}

// Outline destinations
const (
	FitWidth  = "fit_width"
	FitHeight = "fit_height"
	FitRect   = "fit_rect"
	FitXYZ    = "fit_xyz"
)

// OutlineItem is an entry of the table of contents. Coordinates are in
// PDF units, from the bottom left corner of the page.
type OutlineItem struct {
	Type     string        `yaml:"type"`
	Title    string        `yaml:"title"`
	Page     int           `yaml:"page"` // 0 based
	Children []OutlineItem `yaml:"children"`

	X    float64 `yaml:"x"`    // fit_height, fit_xyz
	Y    float64 `yaml:"y"`    // fit_width, fit_xyz
	Zoom float64 `yaml:"zoom"` // fit_xyz

	Top    float64 `yaml:"top"` // fit_rect
	Left   float64 `yaml:"left"`
	Bottom float64 `yaml:"bottom"`
	Right  float64 `yaml:"right"`
}

// LoadMetadata reads a metadata file. JSON files are read as YAML.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta := Metadata{OutlineOpenLevel: 1}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid metadata file %s: %w", path, err)
	}
	if err := checkOutline(meta.Outline); err != nil {
		return nil, fmt.Errorf("invalid metadata file %s: %w", path, err)
	}
	return &meta, nil
}

func checkOutline(items []OutlineItem) error {
	for _, item := range items {
		switch item.Type {
		case FitWidth, FitHeight, FitRect, FitXYZ:
		default:
			return fmt.Errorf("invalid outline item type %q for %q", item.Type, item.Title)
		}
		if err := checkOutline(item.Children); err != nil {
			return err
		}
	}
	return nil
}

// Page label numbering styles
const (
	styleNone         = ""
	styleDecimal      = "D"
	styleRomanUpper   = "R"
	styleRomanLower   = "r"
	styleLettersUpper = "A"
	styleLettersLower = "a"
)

// labelRange is the labeling of the pages starting at Page.
type labelRange struct {
	Page   int
	Style  string
	Prefix string
	Start  int // first number, for styled ranges
}

func (r labelRange) sameStyle(o labelRange) bool {
	return r.Style == o.Style && r.Prefix == o.Prefix
}

// labelRanges returns one range per label.
func labelRanges(labels []string) []labelRange {
	out := make([]labelRange, len(labels))
	for i, label := range labels {
		out[i] = labelRange{Page: i, Prefix: label}
	}
	return out
}

// optimizedLabelRanges groups consecutive labels numbered
// with the same style and prefix.
func optimizedLabelRanges(labels []string) []labelRange {
	var (
		out        []labelRange
		lastNumber = -1
	)
	for i, label := range labels {
		r := parseLabel(label)
		r.Page = i
		if len(out) == 0 || !r.sameStyle(out[len(out)-1]) || r.Start != lastNumber+1 {
			out = append(out, r)
		}
		lastNumber = r.Start
	}
	return out
}

// parseLabel finds the numbering style of a page label: decimal with
// a prefix, roman, letters, or none.
func parseLabel(label string) labelRange {
	if label == "" {
		return labelRange{}
	}
	digits := len(label)
	for digits > 0 && label[digits-1] >= '0' && label[digits-1] <= '9' {
		digits--
	}
	if digits < len(label) {
		n, err := strconv.Atoi(label[digits:])
		if err == nil && n > 0 {
			return labelRange{Style: styleDecimal, Prefix: label[:digits], Start: n}
		}
		return labelRange{Prefix: label}
	}
	upper := strings.ToUpper(label) == label
	if n, ok := parseRoman(label); ok {
		if upper {
			return labelRange{Style: styleRomanUpper, Start: n}
		}
		return labelRange{Style: styleRomanLower, Start: n}
	}
	if n, ok := parseLetters(label); ok {
		if upper {
			return labelRange{Style: styleLettersUpper, Start: n}
		}
		return labelRange{Style: styleLettersLower, Start: n}
	}
	return labelRange{Prefix: label}
}

var romanValues = map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

func parseRoman(s string) (int, bool) {
	s = strings.ToUpper(s)
	n := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && v < romanValues[s[i+1]] {
			n -= v
		} else {
			n += v
		}
	}
	return n, n > 0
}

// parseLetters reads the letters numbering of PDF: A to Z, then
// AA to ZZ, and so on.
func parseLetters(s string) (int, bool) {
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return 0, false
		}
	}
	return int(c-'A'+1) + 26*(len(s)-1), true
}
