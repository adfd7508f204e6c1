// Package schema enforces a task's output contract on a parsed JSON value.
//
// A Schema is plain data: a list of fields with a kind and, for integers, an
// inclusive range. Apply walks the schema and repairs the payload in place of
// rejecting it. Every repair is reported to an Observer.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Kind is the declared type of a field.
type Kind int

const (
	Int Kind = iota + 1
	Text
	StringList
	ObjectList
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Text:
		return "text"
	case StringList:
		return "string_list"
	case ObjectList:
		return "object_list"
	default:
		return "unknown"
	}
}

// NotProvided is the default for a required free-text field.
const NotProvided = "Not provided"

// Field describes one field of a task's output.
type Field struct {
	Name string
	Kind Kind

	// Min and Max bound Int fields; both inclusive.
	Min, Max int

	// Elem lists the sub-fields of ObjectList elements. Present sub-fields
	// are coerced to their kind; absent ones are not inserted.
	Elem []Field

	// AdvisoryMin is the count the prompt asks for. It is reported, never enforced.
	AdvisoryMin int
}

func IntField(name string, min, max int) Field {
	return Field{Name: name, Kind: Int, Min: min, Max: max}
}

func TextField(name string) Field {
	return Field{Name: name, Kind: Text}
}

func ListField(name string) Field {
	return Field{Name: name, Kind: StringList}
}

func ObjectListField(name string, elem ...Field) Field {
	return Field{Name: name, Kind: ObjectList, Elem: elem}
}

// WithAdvisoryMin records the minimum element count requested by the prompt.
func (f Field) WithAdvisoryMin(n int) Field {
	f.AdvisoryMin = n
	return f
}

func (f Field) zero() any {
	switch f.Kind {
	case Int:
		return clampInt(0, f.Min, f.Max)
	case Text:
		return NotProvided
	default:
		return []any{}
	}
}

// zeroOutOfRange reports whether a typed zero would violate the range of f.
// Such sub-fields are inserted even inside object lists.
func (f Field) zeroOutOfRange() bool {
	return f.Kind == Int && clampInt(0, f.Min, f.Max) != 0
}

// Schema is the declared top-level field set of one task.
type Schema struct {
	Task   string
	Fields []Field
}

// Names returns the declared field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Reasons reported in DefaultApplied events.
const (
	ReasonMissing       = "missing"
	ReasonCoerced       = "coerced"
	ReasonNotNumeric    = "not_numeric"
	ReasonClamped       = "clamped"
	ReasonNotList       = "not_list"
	ReasonNotText       = "not_text"
	ReasonNotObject     = "not_object"
	ReasonBelowAdvisory = "below_advisory_count"
)

// DefaultApplied is emitted whenever the validator had to change a field, or
// when a list is shorter than the prompt asked for.
type DefaultApplied struct {
	Task   string `json:"task"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Observer receives DefaultApplied events.
type Observer interface {
	DefaultApplied(ev DefaultApplied)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev DefaultApplied)

func (f ObserverFunc) DefaultApplied(ev DefaultApplied) { f(ev) }

// Recorder collects events. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []DefaultApplied
}

func (r *Recorder) DefaultApplied(ev DefaultApplied) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []DefaultApplied {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DefaultApplied(nil), r.events...)
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type walker struct {
	task string
	obs  Observer
}

func (w walker) emit(field, reason string) {
	if w.obs != nil {
		w.obs.DefaultApplied(DefaultApplied{Task: w.task, Field: field, Reason: reason})
	}
}

// Apply enforces s on payload and never fails. A payload that is not an
// object is treated as an empty one. Undeclared fields pass through.
func Apply(payload any, s Schema, obs Observer) map[string]any {
	w := walker{task: s.Task, obs: obs}
	return w.object(payload, s.Fields, "")
}

// ApplyEach enforces s on every element of an array payload. A payload that
// is not an array becomes an empty list; non-object elements are dropped.
func ApplyEach(payload any, s Schema, obs Observer) []map[string]any {
	w := walker{task: s.Task, obs: obs}

	list, ok := payload.([]any)
	if !ok {
		w.emit("$", ReasonNotList)
		return []map[string]any{}
	}

	out := make([]map[string]any, 0, len(list))
	for i, elem := range list {
		prefix := fmt.Sprintf("[%d].", i)
		if _, isObj := elem.(map[string]any); !isObj {
			w.emit(strings.TrimSuffix(prefix, "."), ReasonNotObject)
			continue
		}
		out = append(out, w.object(elem, s.Fields, prefix))
	}
	return out
}

func (w walker) object(payload any, fields []Field, prefix string) map[string]any {
	src, ok := payload.(map[string]any)
	if !ok {
		if payload != nil {
			w.emit(prefix+"$", ReasonNotObject)
		}
		src = map[string]any{}
	}

	out := make(map[string]any, len(src)+len(fields))
	for k, v := range src {
		out[k] = v
	}
	for _, f := range fields {
		w.field(out, f, prefix+f.Name, true)
	}
	return out
}

// field repairs m[f.Name]. With insert false an absent field stays absent.
func (w walker) field(m map[string]any, f Field, path string, insert bool) {
	v, present := m[f.Name]
	if !present || v == nil {
		if insert {
			m[f.Name] = f.zero()
			w.emit(path, ReasonMissing)
		}
		return
	}

	switch f.Kind {
	case Int:
		m[f.Name] = w.intValue(v, f, path)
	case Text:
		text, ok := toText(v)
		if !ok {
			w.emit(path, ReasonNotText)
		}
		m[f.Name] = text
	case StringList:
		m[f.Name] = w.stringList(v, f, path)
	case ObjectList:
		m[f.Name] = w.objectList(v, f, path)
	}
}

func (w walker) intValue(v any, f Field, path string) int {
	num, exact, ok := toNumber(v)
	if !ok {
		w.emit(path, ReasonNotNumeric)
		return clampInt(0, f.Min, f.Max)
	}
	if !exact {
		w.emit(path, ReasonCoerced)
	}

	t := math.Trunc(num)
	if f.Min == 0 && f.Max == 0 {
		return int(t)
	}
	switch {
	case t < float64(f.Min):
		w.emit(path, ReasonClamped)
		return f.Min
	case t > float64(f.Max):
		w.emit(path, ReasonClamped)
		return f.Max
	}
	return int(t)
}

func (w walker) stringList(v any, f Field, path string) []any {
	list, ok := v.([]any)
	if !ok {
		w.emit(path, ReasonNotList)
		return []any{}
	}

	out := make([]any, 0, len(list))
	coerced := false
	for _, elem := range list {
		// null elements are dropped rather than rendered as text
		if elem == nil {
			coerced = true
			continue
		}
		text, isText := toText(elem)
		if !isText {
			coerced = true
		}
		out = append(out, text)
	}
	if coerced {
		w.emit(path, ReasonNotText)
	}
	w.advisory(len(out), f, path)
	return out
}

func (w walker) objectList(v any, f Field, path string) []any {
	list, ok := v.([]any)
	if !ok {
		w.emit(path, ReasonNotList)
		return []any{}
	}

	out := make([]any, 0, len(list))
	for i, elem := range list {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, isObj := elem.(map[string]any)
		if !isObj {
			w.emit(elemPath, ReasonNotObject)
			continue
		}
		copied := make(map[string]any, len(obj))
		for k, val := range obj {
			copied[k] = val
		}
		for _, sub := range f.Elem {
			w.field(copied, sub, elemPath+"."+sub.Name, sub.zeroOutOfRange())
		}
		out = append(out, copied)
	}
	w.advisory(len(out), f, path)
	return out
}

func (w walker) advisory(n int, f Field, path string) {
	if f.AdvisoryMin > 0 && n < f.AdvisoryMin {
		w.emit(path, ReasonBelowAdvisory)
	}
}

// toNumber reports the numeric value of v. exact is false when the value
// needed coercion (fractional number or numeric text).
func toNumber(v any) (num float64, exact bool, ok bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return float64(i), true, true
		}
		f, err := n.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false, false
		}
		return f, f == math.Trunc(f), true
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false, false
		}
		return n, n == math.Trunc(n), true
	case int:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case string:
		i, ok := parseLeadingInt(n)
		return float64(i), false, ok
	default:
		return 0, false, false
	}
}

// parseLeadingInt reads an optional sign and leading digits, ignoring the rest
// ("85%" -> 85, "7.5" -> 7). No digits means not numeric.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	// cap the digit run; anything this long clamps anyway
	if end-digitsStart > 15 {
		end = digitsStart + 15
	}
	i, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

func toText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), false
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), false
	case bool:
		return strconv.FormatBool(t), false
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return NotProvided, false
		}
		return string(b), false
	}
}

func clampInt(v, min, max int) int {
	if min == 0 && max == 0 {
		return v
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Decode converts a validated map into a typed result.
func Decode(m any, out any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode validated payload: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode validated payload: %w", err)
	}
	return nil
}

// ToPayload turns a typed value into the generic form Apply works on.
func ToPayload(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
