package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Node property access helpers. Properties written by this service are
// strings, int64s, float64s, bools, and lists of strings; timestamps
// are RFC3339Nano strings, matching how writes serialize them.

func propStr(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func propInt(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func propBool(props map[string]any, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}

func propTime(props map[string]any, key string) time.Time {
	raw := propStr(props, key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func propTimePtr(props map[string]any, key string) *time.Time {
	t := propTime(props, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func propStrs(props map[string]any, key string) []string {
	raw, ok := props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func nodeProps(rec *neo4j.Record, key string) map[string]any {
	val, ok := rec.Get(key)
	if !ok || val == nil {
		return nil
	}
	switch n := val.(type) {
	case dbtype.Node:
		return n.Props
	case dbtype.Relationship:
		return n.Props
	case map[string]any:
		return n
	}
	return nil
}

func collectRecords(ctx context.Context, res neo4j.ResultWithContext) ([]*neo4j.Record, error) {
	return res.Collect(ctx)
}

// run executes a statement whose records the caller does not need.
func run(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) error {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}
