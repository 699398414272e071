package entities

import (
	"encoding/json"
	"fmt"
	"math"
)

// Document is the JSON-like shape exchanged with document stores. Nested
// objects are map[string]any and arrays are []any.
type Document map[string]any

// Stored keys inside one voting field.
const (
	KeyID                = "_id"
	KeyUpVoters          = "up"
	KeyDownVoters        = "down"
	KeyIPLog             = "ip"
	KeyFacelessUpIPs     = "ip_up"
	KeyFacelessDownIPs   = "ip_down"
	KeyUpCount           = "up_count"
	KeyDownCount         = "down_count"
	KeyFacelessUpCount   = "faceless_up_count"
	KeyFacelessDownCount = "faceless_down_count"
	KeyTotalUpCount      = "total_up_count"
	KeyTotalDownCount    = "total_down_count"
	KeyCount             = "count"
	KeyPoint             = "point"
	KeyRatio             = "ratio"
)

// Tally is the aggregate state of one voting field on one votee.
type Tally struct {
	UpVoterIDs        []string
	DownVoterIDs      []string
	IPLog             []string
	FacelessUpIPs     []string
	FacelessDownIPs   []string
	UpCount           int64
	DownCount         int64
	FacelessUpCount   int64
	FacelessDownCount int64
	TotalUpCount      int64
	TotalDownCount    int64
	Count             int64
	Point             float64
	Ratio             float64
}

// TotalCount includes faceless votes; Count does not.
func (t Tally) TotalCount() int64 {
	return t.TotalUpCount + t.TotalDownCount
}

func (t Tally) VoteValue(voterID string) VoteValue {
	if voterID == "" {
		return VoteNone
	}
	if containsString(t.UpVoterIDs, voterID) {
		return VoteUp
	}
	if containsString(t.DownVoterIDs, voterID) {
		return VoteDown
	}
	return VoteNone
}

func (t Tally) HasIP(ip string) bool {
	return ip != "" && containsString(t.IPLog, ip)
}

// FacelessValue reports the option an anonymous vote from ip was recorded
// under. Ips logged before per-option logs existed report VoteNone.
func (t Tally) FacelessValue(ip string) VoteValue {
	if ip == "" {
		return VoteNone
	}
	if containsString(t.FacelessUpIPs, ip) {
		return VoteUp
	}
	if containsString(t.FacelessDownIPs, ip) {
		return VoteDown
	}
	return VoteNone
}

// Votable is the capability the engine reads from a hosted votee.
type Votable interface {
	VoteeID() string
	TotalUpCount(field string) int64
	VotesCount(field string) int64
	VoteValue(field string, voterID string) VoteValue
}

// Votee is a decoded votee document.
type Votee struct {
	ID  string
	doc Document
}

func NewVotee(doc Document) (Votee, error) {
	id, ok := doc[KeyID]
	if !ok || id == nil {
		return Votee{}, fmt.Errorf("votee document has no %s", KeyID)
	}
	return Votee{ID: fmt.Sprint(id), doc: doc}, nil
}

func (v Votee) VoteeID() string { return v.ID }

func (v Votee) Tally(field string) Tally {
	return DecodeTally(v.doc, field)
}

func (v Votee) TotalUpCount(field string) int64 {
	return v.Tally(field).TotalUpCount
}

// VotesCount is the ratio denominator: every recorded vote, faceless included.
func (v Votee) VotesCount(field string) int64 {
	return v.Tally(field).TotalCount()
}

func (v Votee) VoteValue(field string, voterID string) VoteValue {
	return v.Tally(field).VoteValue(voterID)
}

// DecodeTally reads a voting field out of a votee document. The field may be
// a dotted path; missing keys decode as zero values.
func DecodeTally(doc Document, field string) Tally {
	raw := lookup(map[string]any(doc), field)
	sub, _ := raw.(map[string]any)
	if sub == nil {
		if typed, ok := raw.(Document); ok {
			sub = typed
		}
	}
	if sub == nil {
		return Tally{}
	}
	return Tally{
		UpVoterIDs:        StringSlice(sub[KeyUpVoters]),
		DownVoterIDs:      StringSlice(sub[KeyDownVoters]),
		IPLog:             StringSlice(sub[KeyIPLog]),
		FacelessUpIPs:     StringSlice(sub[KeyFacelessUpIPs]),
		FacelessDownIPs:   StringSlice(sub[KeyFacelessDownIPs]),
		UpCount:           Int64(sub[KeyUpCount]),
		DownCount:         Int64(sub[KeyDownCount]),
		FacelessUpCount:   Int64(sub[KeyFacelessUpCount]),
		FacelessDownCount: Int64(sub[KeyFacelessDownCount]),
		TotalUpCount:      Int64(sub[KeyTotalUpCount]),
		TotalDownCount:    Int64(sub[KeyTotalDownCount]),
		Count:             Int64(sub[KeyCount]),
		Point:             Float64(sub[KeyPoint]),
		Ratio:             Float64(sub[KeyRatio]),
	}
}

// NewTallyDocument returns the zero-valued aggregate stored for a new field.
func NewTallyDocument() map[string]any {
	return map[string]any{
		KeyUpVoters:          []any{},
		KeyDownVoters:        []any{},
		KeyIPLog:             []any{},
		KeyFacelessUpIPs:     []any{},
		KeyFacelessDownIPs:   []any{},
		KeyUpCount:           int64(0),
		KeyDownCount:         int64(0),
		KeyFacelessUpCount:   int64(0),
		KeyFacelessDownCount: int64(0),
		KeyTotalUpCount:      int64(0),
		KeyTotalDownCount:    int64(0),
		KeyCount:             int64(0),
		KeyPoint:             float64(0),
		KeyRatio:             float64(0),
	}
}

// NewVoteeDocument builds a votee with zeroed aggregates for every field.
// Dotted field names produce nested objects.
func NewVoteeDocument(id string, fields ...string) Document {
	doc := Document{KeyID: id}
	if len(fields) == 0 {
		fields = []string{DefaultVotingField}
	}
	for _, field := range fields {
		assign(map[string]any(doc), field, NewTallyDocument())
	}
	return doc
}

func lookup(node map[string]any, path string) any {
	var current any = node
	for _, segment := range splitPath(path) {
		m, ok := asMap(current)
		if !ok {
			return nil
		}
		current = m[segment]
	}
	return current
}

func assign(node map[string]any, path string, value any) {
	segments := splitPath(path)
	current := node
	for _, segment := range segments[:len(segments)-1] {
		next, ok := asMap(current[segment])
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

func splitPath(path string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	return append(segments, path[start:])
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Document:
		return typed, true
	default:
		return nil, false
	}
}

// StringSlice converts a stored array into strings, skipping nil entries.
func StringSlice(value any) []string {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
		return items
	default:
		return nil
	}
}

// Int64 reads a stored counter regardless of its numeric encoding.
func Int64(value any) int64 {
	switch typed := value.(type) {
	case int:
		return int64(typed)
	case int32:
		return int64(typed)
	case int64:
		return typed
	case float32:
		return int64(math.Round(float64(typed)))
	case float64:
		return int64(math.Round(typed))
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return n
		}
		f, _ := typed.Float64()
		return int64(math.Round(f))
	default:
		return 0
	}
}

func Float64(value any) float64 {
	switch typed := value.(type) {
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	case float64:
		return typed
	case json.Number:
		f, _ := typed.Float64()
		return f
	default:
		return 0
	}
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
