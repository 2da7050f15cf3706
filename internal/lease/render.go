package lease

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Format selects how list output is rendered.
type Format string

const (
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatRaw    Format = "raw"
	FormatDetail Format = "detail"
)

// Render writes the list result to w in the requested format.
func Render(w io.Writer, format Format, result ListResult) error {
	switch format {
	case FormatTable, "":
		return RenderTable(w, result.Leases)
	case FormatJSON:
		return RenderJSON(w, result.Leases)
	case FormatRaw:
		return RenderRaw(w, result.Raw)
	case FormatDetail:
		return RenderDetail(w, result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderTable writes an aligned table of leases.
func RenderTable(w io.Writer, leases []Lease) error {
	if len(leases) == 0 {
		_, err := fmt.Fprintln(w, "No leases found.")
		return err
	}

	fmt.Fprintf(w, "Total leases: %d\n\n", len(leases))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IP ADDRESS\tMAC ADDRESS\tHOSTNAME\tSTATUS")
	for _, lease := range leases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			orDash(lease.IPAddress), orDash(lease.MACAddress),
			orDash(lease.Hostname), orDash(lease.AllocType))
	}
	return tw.Flush()
}

// RenderJSON writes the lease projections as an indented JSON array.
func RenderJSON(w io.Writer, leases []Lease) error {
	if leases == nil {
		leases = []Lease{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(leases)
}

// RenderRaw writes the unfiltered API response, re-indented when it is
// valid JSON.
func RenderRaw(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, werr := w.Write(raw)
		return werr
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderDetail writes one block per lease, including residual response
// fields in their defined (sorted) order.
func RenderDetail(w io.Writer, result ListResult) error {
	if len(result.Leases) == 0 {
		_, err := fmt.Fprintln(w, "No leases found.")
		return err
	}

	for i, lease := range result.Leases {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", orDash(lease.IPAddress))
		fmt.Fprintf(w, "  mac_address: %s\n", orDash(lease.MACAddress))
		fmt.Fprintf(w, "  hostname:    %s\n", orDash(lease.Hostname))
		fmt.Fprintf(w, "  alloc_type:  %s\n", orDash(lease.AllocType))
		fmt.Fprintf(w, "  resource:    %s\n", orDash(lease.Resource))
		if i < len(result.Records) {
			for _, field := range result.Records[i].Extra {
				fmt.Fprintf(w, "  %s: %v\n", field.Key, field.Value)
			}
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
