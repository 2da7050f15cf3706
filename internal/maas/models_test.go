package maas

import (
	"encoding/json"
	"testing"
)

func TestRecordUnmarshalKnownFields(t *testing.T) {
	data := []byte(`{
		"ip": "10.0.0.5",
		"mac_address": "aa:bb:cc:dd:ee:ff",
		"hostname": "node1",
		"alloc_type": 4,
		"alloc_type_name": "DHCP",
		"resource_uri": "/MAAS/api/2.0/ipaddresses/42/"
	}`)

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if record.IP != "10.0.0.5" {
		t.Errorf("IP = %q", record.IP)
	}
	if record.MACAddress != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("MACAddress = %q", record.MACAddress)
	}
	if record.AllocType != 4 {
		t.Errorf("AllocType = %d", record.AllocType)
	}
	if record.AllocTypeName != "DHCP" {
		t.Errorf("AllocTypeName = %q", record.AllocTypeName)
	}
	if record.ResourceURI != "/MAAS/api/2.0/ipaddresses/42/" {
		t.Errorf("ResourceURI = %q", record.ResourceURI)
	}
	if len(record.Extra) != 0 {
		t.Errorf("Extra = %v, want empty", record.Extra)
	}
}

func TestRecordResidualFieldsSortedByKey(t *testing.T) {
	data := []byte(`{
		"ip": "10.0.0.5",
		"zone": "default",
		"alloc_type": 4,
		"created": "2024-01-01",
		"owner": "admin"
	}`)

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	wantKeys := []string{"created", "owner", "zone"}
	if len(record.Extra) != len(wantKeys) {
		t.Fatalf("Extra has %d fields, want %d: %v", len(record.Extra), len(wantKeys), record.Extra)
	}
	for i, key := range wantKeys {
		if record.Extra[i].Key != key {
			t.Errorf("Extra[%d].Key = %q, want %q", i, record.Extra[i].Key, key)
		}
	}
}

func TestRecordTolerantOfNullFields(t *testing.T) {
	data := []byte(`{"ip": "10.0.0.5", "mac_address": null, "alloc_type": 1}`)

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if record.MACAddress != "" {
		t.Errorf("MACAddress = %q, want empty", record.MACAddress)
	}
}

func TestDecodeRecords(t *testing.T) {
	raw := json.RawMessage(`[{"ip": "10.0.0.5"}, {"ip": "10.0.0.6"}]`)
	records, err := DecodeRecords(raw)
	if err != nil {
		t.Fatalf("DecodeRecords() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestDecodeRecordsRejectsNonArray(t *testing.T) {
	if _, err := DecodeRecords(json.RawMessage(`{"count": 0}`)); err == nil {
		t.Fatal("expected error for non-array response")
	}
}
