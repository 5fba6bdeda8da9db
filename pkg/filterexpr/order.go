package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

type orderParams struct {
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

func parseOrderBy(raw string, schema OrderSchema) (orderParams, error) {
	if schema.DefaultPrimary == "" || schema.FallbackKey == "" {
		return orderParams{}, errors.New("order schema requires default primary and fallback keys")
	}
	if _, ok := schema.Fields[schema.DefaultPrimary]; !ok {
		return orderParams{}, fmt.Errorf("order key %q missing from schema fields", schema.DefaultPrimary)
	}
	if _, ok := schema.Fields[schema.FallbackKey]; !ok {
		return orderParams{}, fmt.Errorf("fallback order key %q missing from schema fields", schema.FallbackKey)
	}

	ord := orderParams{
		PrimaryKey:    schema.DefaultPrimary,
		PrimaryDesc:   schema.DefaultPrimaryDesc,
		SecondaryKey:  schema.FallbackKey,
		SecondaryDesc: schema.FallbackDesc,
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ord, nil
	}

	seen := make(map[string]struct{})
	idx := 0
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(strings.TrimSpace(seg))
		if len(parts) == 0 {
			continue
		}

		key := parts[0]
		if _, ok := schema.Fields[key]; !ok {
			return orderParams{}, fmt.Errorf("field %q cannot be used for ordering", key)
		}
		if _, dup := seen[key]; dup {
			return orderParams{}, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = struct{}{}

		var desc bool
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return orderParams{}, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
			}
		default:
			return orderParams{}, fmt.Errorf("invalid order segment %q", seg)
		}

		switch idx {
		case 0:
			ord.PrimaryKey = key
			ord.PrimaryDesc = desc
		case 1:
			ord.SecondaryKey = key
			ord.SecondaryDesc = desc
		default:
			return orderParams{}, errors.New("order_by supports at most two keys")
		}
		idx++
	}

	// Guarantee a distinct tiebreaker for stable pagination. The replacement
	// must be deterministic or identical requests could paginate differently:
	// prefer the schema's default primary, then the smallest remaining key.
	if ord.SecondaryKey == ord.PrimaryKey {
		ord.SecondaryKey = schema.DefaultPrimary
		ord.SecondaryDesc = schema.DefaultPrimaryDesc
		if ord.SecondaryKey == ord.PrimaryKey {
			keys := make([]string, 0, len(schema.Fields))
			for key := range schema.Fields {
				if key != ord.PrimaryKey {
					keys = append(keys, key)
				}
			}
			if len(keys) == 0 {
				return orderParams{}, errors.New("order schema requires at least two distinct keys")
			}
			sort.Strings(keys)
			ord.SecondaryKey = keys[0]
			ord.SecondaryDesc = false
		}
	}

	return ord, nil
}

func setOrderParams(binding any, ord orderParams) error {
	target := reflect.ValueOf(binding).Elem()
	if target.Kind() != reflect.Struct {
		return errors.New("binding must point to a struct")
	}

	assignments := []struct {
		name  string
		value reflect.Value
	}{
		{"PrimaryKey", reflect.ValueOf(ord.PrimaryKey)},
		{"PrimaryDesc", reflect.ValueOf(ord.PrimaryDesc)},
		{"SecondaryKey", reflect.ValueOf(ord.SecondaryKey)},
		{"SecondaryDesc", reflect.ValueOf(ord.SecondaryDesc)},
	}
	for _, a := range assignments {
		field := target.FieldByName(a.name)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("params struct %s has no settable field named %q", target.Type(), a.name)
		}
		field.Set(a.value)
	}
	return nil
}
