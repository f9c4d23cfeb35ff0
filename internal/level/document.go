// Package level defines the persisted level document and the stores that
// keep one document per level name.
package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidName is returned for names that are empty or could escape
	// the level directory.
	ErrInvalidName = errors.New("invalid level name")
	// ErrNotFound is returned when no document is stored under a name.
	ErrNotFound = errors.New("level not found")
)

var campaignPattern = regexp.MustCompile(`^L(\d+)$`)

// Point is a pixel position or extent.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Record is one terrain, pickup or actor entry. Positions are in pixels.
type Record struct {
	Type     string `json:"type"`
	Pos      Point  `json:"pos"`
	Size     Point  `json:"size"`
	HP       *int   `json:"hp,omitempty"`
	MaxHP    *int   `json:"maxhp,omitempty"`
	Quantity int    `json:"quantity,omitempty"`

	Arrows    int `json:"arrows,omitempty"`
	Fireballs int `json:"fireballs,omitempty"`
	Keys      int `json:"keys,omitempty"`
}

// Document is a saved level. Maps are keyed by "<col>,<row>"; a nil record
// marks a cell covered by a multi-cell entity recorded elsewhere.
type Document struct {
	Name    string             `json:"name"`
	Terrain map[string]*Record `json:"terrain"`
	Actors  map[string]*Record `json:"actors"`
}

// NewDocument returns an empty document.
func NewDocument(name string) *Document {
	return &Document{
		Name:    name,
		Terrain: make(map[string]*Record),
		Actors:  make(map[string]*Record),
	}
}

// Parse decodes a JSON document and validates its name.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	if err := ValidateName(doc.Name); err != nil {
		return nil, err
	}
	if doc.Terrain == nil {
		doc.Terrain = make(map[string]*Record)
	}
	if doc.Actors == nil {
		doc.Actors = make(map[string]*Record)
	}
	return &doc, nil
}

// Marshal encodes the document as JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// ValidateName rejects empty names and names containing '/', '\' or '.'.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// CampaignName returns the stored name of campaign level index.
func CampaignName(index int) string {
	return "L" + strconv.Itoa(index)
}

// CampaignIndex parses a campaign level name such as "L3".
func CampaignIndex(name string) (int, bool) {
	m := campaignPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Campaign filters names down to campaign levels in level order.
func Campaign(names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := CampaignIndex(n); ok {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := CampaignIndex(out[i])
		b, _ := CampaignIndex(out[j])
		return a < b
	})
	return out
}
