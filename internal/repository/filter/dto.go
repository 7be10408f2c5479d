package filter

import (
	"encoding/json"
	"fmt"
	"strconv"

	domfilter "github.com/kailas-cloud/booruq/internal/domain/filter"
)

// filterToHash converts a filter to a map for HSET. Tag id lists are stored as JSON.
func filterToHash(f *domfilter.Filter) (map[string]string, error) {
	spec := f.Spec()
	hidden, err := json.Marshal(nonNil(spec.HiddenTagIDs))
	if err != nil {
		return nil, fmt.Errorf("marshal hidden_tag_ids: %w", err)
	}
	spoilered, err := json.Marshal(nonNil(spec.SpoileredTagIDs))
	if err != nil {
		return nil, fmt.Errorf("marshal spoilered_tag_ids: %w", err)
	}
	return map[string]string{
		"id":                strconv.FormatInt(spec.ID, 10),
		"name":              spec.Name,
		"description":       spec.Description,
		"hidden_tag_ids":    string(hidden),
		"spoilered_tag_ids": string(spoilered),
		"hidden_complex":    spec.HiddenComplex,
		"spoilered_complex": spec.SpoileredComplex,
	}, nil
}

// specFromHash rebuilds a filter spec from an HGETALL result map.
func specFromHash(m map[string]string) (domfilter.Spec, error) {
	spec := domfilter.Spec{
		Name:             m["name"],
		Description:      m["description"],
		HiddenComplex:    m["hidden_complex"],
		SpoileredComplex: m["spoilered_complex"],
	}
	if idStr := m["id"]; idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return domfilter.Spec{}, fmt.Errorf("invalid id: %w", err)
		}
		spec.ID = id
	}
	if err := unmarshalIDs(m["hidden_tag_ids"], &spec.HiddenTagIDs); err != nil {
		return domfilter.Spec{}, fmt.Errorf("unmarshal hidden_tag_ids: %w", err)
	}
	if err := unmarshalIDs(m["spoilered_tag_ids"], &spec.SpoileredTagIDs); err != nil {
		return domfilter.Spec{}, fmt.Errorf("unmarshal spoilered_tag_ids: %w", err)
	}
	return spec, nil
}

func unmarshalIDs(s string, dst *[]int64) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
