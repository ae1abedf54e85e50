package firestore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document is the generic field mapping exchanged between the client and its
// callers. Values are restricted to nil, bool, int64 (and smaller integer
// kinds), float64, string, time.Time, []interface{} and nested
// map[string]interface{}. A document read back from the store carries its id
// under the "id" key, derived from the resource path.
type Document = map[string]interface{}

// toFirestoreValue wraps a Go value in the Firestore REST typed-value
// convention: every leaf gets exactly one discriminator key, arrays and maps
// recurse using the same wrapping rule.
//
// Unrecognized types fall back to their string form rather than failing.
// This mirrors the historical behavior of the mobile client and is kept
// until product confirms a hard error is acceptable.
func toFirestoreValue(v interface{}) map[string]interface{} {
	switch val := v.(type) {
	case nil:
		return map[string]interface{}{"nullValue": nil}
	case bool:
		return map[string]interface{}{"booleanValue": val}
	case int:
		return map[string]interface{}{"integerValue": strconv.FormatInt(int64(val), 10)}
	case int32:
		return map[string]interface{}{"integerValue": strconv.FormatInt(int64(val), 10)}
	case int64:
		return map[string]interface{}{"integerValue": strconv.FormatInt(val, 10)}
	case float32:
		return map[string]interface{}{"doubleValue": float64(val)}
	case float64:
		return map[string]interface{}{"doubleValue": val}
	case string:
		return map[string]interface{}{"stringValue": val}
	case time.Time:
		return map[string]interface{}{"timestampValue": val.UTC().Format(time.RFC3339Nano)}
	case []interface{}:
		values := make([]interface{}, len(val))
		for i, item := range val {
			values[i] = toFirestoreValue(item)
		}
		return map[string]interface{}{"arrayValue": map[string]interface{}{"values": values}}
	case map[string]interface{}:
		fields := make(map[string]interface{}, len(val))
		for k, item := range val {
			fields[k] = toFirestoreValue(item)
		}
		return map[string]interface{}{"mapValue": map[string]interface{}{"fields": fields}}
	default:
		return map[string]interface{}{"stringValue": fmt.Sprintf("%v", val)}
	}
}

// fromFirestoreValue unwraps a Firestore typed value back into its plain Go
// form. Unknown wrapper shapes are returned unmodified so the caller can
// still see what the server sent.
func fromFirestoreValue(v interface{}) interface{} {
	wrapped, ok := v.(map[string]interface{})
	if !ok {
		return v
	}

	if s, exists := wrapped["stringValue"]; exists {
		return s
	}
	if raw, exists := wrapped["integerValue"]; exists {
		// integers travel as decimal strings on the wire
		switch n := raw.(type) {
		case string:
			if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
				return parsed
			}
			return n
		case float64:
			return int64(n)
		default:
			return raw
		}
	}
	if d, exists := wrapped["doubleValue"]; exists {
		return d
	}
	if b, exists := wrapped["booleanValue"]; exists {
		return b
	}
	if ts, exists := wrapped["timestampValue"]; exists {
		if s, ok := ts.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t.UTC()
			}
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t.UTC()
			}
			return s
		}
		return ts
	}
	if _, exists := wrapped["nullValue"]; exists {
		return nil
	}
	if arr, exists := wrapped["arrayValue"]; exists {
		if arrMap, ok := arr.(map[string]interface{}); ok {
			rawValues, _ := arrMap["values"].([]interface{})
			values := make([]interface{}, len(rawValues))
			for i, item := range rawValues {
				values[i] = fromFirestoreValue(item)
			}
			return values
		}
		return arr
	}
	if m, exists := wrapped["mapValue"]; exists {
		if mMap, ok := m.(map[string]interface{}); ok {
			rawFields, _ := mMap["fields"].(map[string]interface{})
			fields := make(map[string]interface{}, len(rawFields))
			for k, item := range rawFields {
				fields[k] = fromFirestoreValue(item)
			}
			return fields
		}
		return m
	}

	return v
}

// documentToWire converts a generic document into the REST write payload:
// every top-level entry wrapped, nested under "fields".
func documentToWire(data Document) map[string]interface{} {
	fields := make(map[string]interface{}, len(data))
	for k, v := range data {
		fields[k] = toFirestoreValue(v)
	}
	return map[string]interface{}{"fields": fields}
}

// wireToDocument converts a REST document representation back into a generic
// document. The trailing segment of the resource name, when present, is
// merged in under the "id" key.
func wireToDocument(wire map[string]interface{}) (Document, error) {
	doc := Document{}

	if name, ok := wire["name"].(string); ok && name != "" {
		segments := strings.Split(name, "/")
		doc["id"] = segments[len(segments)-1]
	}

	rawFields, exists := wire["fields"]
	if !exists {
		return doc, nil
	}
	fields, ok := rawFields.(map[string]interface{})
	if !ok {
		return nil, &FormatError{Reason: "fields is not an object"}
	}
	for k, v := range fields {
		doc[k] = fromFirestoreValue(v)
	}
	return doc, nil
}
