package maas

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Field is one residual response attribute that is not part of the
// Record schema.
type Field struct {
	Key   string
	Value any
}

// Record is one resource from a MAAS collection listing. The schema
// covers the fields the synchronizer acts on; everything else the server
// returns lands in Extra, sorted by key so display order is stable.
type Record struct {
	IP            string
	MACAddress    string
	Hostname      string
	Name          string
	AllocType     int
	AllocTypeName string
	ResourceURI   string

	Extra []Field
}

var recordKeys = map[string]struct{}{
	"ip":              {},
	"mac_address":     {},
	"hostname":        {},
	"name":            {},
	"alloc_type":      {},
	"alloc_type_name": {},
	"resource_uri":    {},
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.IP = stringField(raw, "ip")
	r.MACAddress = stringField(raw, "mac_address")
	r.Hostname = stringField(raw, "hostname")
	r.Name = stringField(raw, "name")
	r.AllocTypeName = stringField(raw, "alloc_type_name")
	r.ResourceURI = stringField(raw, "resource_uri")
	if v, ok := raw["alloc_type"].(float64); ok {
		r.AllocType = int(v)
	}

	r.Extra = r.Extra[:0]
	for key, value := range raw {
		if _, known := recordKeys[key]; known {
			continue
		}
		r.Extra = append(r.Extra, Field{Key: key, Value: value})
	}
	sort.Slice(r.Extra, func(i, j int) bool { return r.Extra[i].Key < r.Extra[j].Key })
	return nil
}

// DecodeRecords parses a collection listing response.
func DecodeRecords(raw json.RawMessage) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode MAAS collection: %w", err)
	}
	return records, nil
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}
