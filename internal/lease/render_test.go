package lease

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/anuragkhuntia/leasectl/internal/maas"
)

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	leases := []Lease{
		{IPAddress: "10.0.0.5", MACAddress: "aa:bb:cc:dd:ee:ff", Hostname: "node1", AllocType: "DHCP"},
		{IPAddress: "10.0.0.6", AllocType: "AUTO"},
	}

	if err := RenderTable(&buf, leases); err != nil {
		t.Fatalf("RenderTable() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Total leases: 2") {
		t.Errorf("missing count header:\n%s", out)
	}
	if !strings.Contains(out, "10.0.0.5") || !strings.Contains(out, "node1") {
		t.Errorf("missing lease row:\n%s", out)
	}
	// Empty fields render as a dash.
	if !strings.Contains(out, "-") {
		t.Errorf("missing dash placeholder:\n%s", out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTable(&buf, nil); err != nil {
		t.Fatalf("RenderTable() error = %v", err)
	}
	if got := buf.String(); got != "No leases found.\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	leases := []Lease{{IPAddress: "10.0.0.5", MACAddress: "aa:bb:cc:dd:ee:ff"}}

	if err := RenderJSON(&buf, leases); err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	var decoded []Lease
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || decoded[0].IPAddress != "10.0.0.5" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestRenderJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, nil); err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}

func TestRenderRawIndents(t *testing.T) {
	var buf bytes.Buffer
	raw := json.RawMessage(`[{"ip":"10.0.0.5","alloc_type":4}]`)

	if err := RenderRaw(&buf, raw); err != nil {
		t.Fatalf("RenderRaw() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\"alloc_type\": 4") {
		t.Errorf("output not indented:\n%s", buf.String())
	}
}

func TestRenderDetailIncludesResidualFieldsInOrder(t *testing.T) {
	var buf bytes.Buffer
	result := ListResult{
		Leases: []Lease{{IPAddress: "10.0.0.5", MACAddress: "aa:bb:cc:dd:ee:ff", Hostname: "node1", AllocType: "DHCP"}},
		Records: []maas.Record{{
			IP: "10.0.0.5",
			Extra: []maas.Field{
				{Key: "created", Value: "2024-01-01"},
				{Key: "owner", Value: "admin"},
				{Key: "zone", Value: "default"},
			},
		}},
	}

	if err := RenderDetail(&buf, result); err != nil {
		t.Fatalf("RenderDetail() error = %v", err)
	}

	out := buf.String()
	created := strings.Index(out, "created:")
	owner := strings.Index(out, "owner:")
	zone := strings.Index(out, "zone:")
	if created < 0 || owner < 0 || zone < 0 {
		t.Fatalf("residual fields missing:\n%s", out)
	}
	if !(created < owner && owner < zone) {
		t.Errorf("residual fields out of order:\n%s", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Format("yaml"), ListResult{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
