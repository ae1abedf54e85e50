package firestore

import (
	"encoding/json"
	"sort"
)

// Wire shapes for the :runQuery endpoint. The asymmetry between a single
// predicate (sent as a bare fieldFilter) and several (wrapped in a composite
// AND) is part of the wire contract and must not be collapsed.

type structuredQuery struct {
	From   []collectionSelector `json:"from"`
	Where  *queryFilter         `json:"where,omitempty"`
	Limit  int                  `json:"limit,omitempty"`
	Offset int                  `json:"offset,omitempty"`
}

type collectionSelector struct {
	CollectionID string `json:"collectionId"`
}

type queryFilter struct {
	FieldFilter     *fieldFilter     `json:"fieldFilter,omitempty"`
	CompositeFilter *compositeFilter `json:"compositeFilter,omitempty"`
}

type fieldFilter struct {
	Field fieldReference         `json:"field"`
	Op    string                 `json:"op"`
	Value map[string]interface{} `json:"value"`
}

type compositeFilter struct {
	Op      string        `json:"op"`
	Filters []queryFilter `json:"filters"`
}

type fieldReference struct {
	FieldPath string `json:"fieldPath"`
}

// buildStructuredQuery assembles the query payload for one collection with
// equality predicates. Field names are sorted so the produced JSON is
// deterministic regardless of map iteration order.
func buildStructuredQuery(collection string, filters map[string]interface{}, limit, offset int) structuredQuery {
	q := structuredQuery{
		From:   []collectionSelector{{CollectionID: collection}},
		Limit:  limit,
		Offset: offset,
	}

	if len(filters) == 0 {
		return q
	}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	predicates := make([]queryFilter, 0, len(names))
	for _, name := range names {
		predicates = append(predicates, queryFilter{
			FieldFilter: &fieldFilter{
				Field: fieldReference{FieldPath: name},
				Op:    "EQUAL",
				Value: toFirestoreValue(filters[name]),
			},
		})
	}

	if len(predicates) == 1 {
		q.Where = &predicates[0]
	} else {
		q.Where = &queryFilter{
			CompositeFilter: &compositeFilter{
				Op:      "AND",
				Filters: predicates,
			},
		}
	}
	return q
}

// decodeQueryResults unpacks a run-query response. The response is a JSON
// array whose entries are heterogeneous: only entries carrying a "document"
// key hold a row, the rest (read times, partial progress) are skipped.
func decodeQueryResults(body []byte) ([]Document, error) {
	var entries []map[string]interface{}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &FormatError{Reason: "query response is not a JSON array", Cause: err}
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		rawDoc, exists := entry["document"]
		if !exists {
			continue
		}
		wire, ok := rawDoc.(map[string]interface{})
		if !ok {
			return nil, &FormatError{Reason: "query entry document is not an object"}
		}
		doc, err := wireToDocument(wire)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
