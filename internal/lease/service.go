// Package lease reconciles local lease definitions against the remote
// MAAS collections. Every mutation that references an existing record
// re-fetches the full collection first; nothing is cached across
// operations, the remote store stays authoritative.
package lease

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anuragkhuntia/leasectl/internal/config"
	"github.com/anuragkhuntia/leasectl/internal/logging"
	"github.com/anuragkhuntia/leasectl/internal/maas"
)

// APIClient is the slice of the MAAS client the synchronizer needs.
type APIClient interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	PostForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error)
	PutForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error)
}

// IdentifierKind selects how Release matches records.
type IdentifierKind string

const (
	IdentifierIP  IdentifierKind = "ip"
	IdentifierMAC IdentifierKind = "mac"
)

// Lease is the projection of a MAAS IP-allocation record rendered to the
// user.
type Lease struct {
	IPAddress  string `json:"ip_address"`
	MACAddress string `json:"mac_address"`
	Hostname   string `json:"hostname"`
	AllocType  string `json:"alloc_type"`
	Resource   string `json:"resource,omitempty"`
}

// ListResult carries the filtered projections together with the records
// and the unfiltered response body for the raw/detail output formats.
type ListResult struct {
	Leases  []Lease
	Records []maas.Record
	Raw     json.RawMessage
}

type Synchronizer struct {
	Logger *slog.Logger
	Client APIClient
	API    config.APIConfig
}

// List fetches the remote IP-allocation collection and projects the
// DHCP-relevant records. Read-only; assumes a single response page.
func (s *Synchronizer) List(ctx context.Context) (ListResult, error) {
	records, raw, err := s.fetchRecords(ctx, s.API.IPAddressesPath)
	if err != nil {
		return ListResult{}, err
	}

	result := ListResult{Raw: raw}
	for _, record := range records {
		if !s.dhcpRelevant(record.AllocType) {
			continue
		}
		result.Records = append(result.Records, record)
		result.Leases = append(result.Leases, Lease{
			IPAddress:  record.IP,
			MACAddress: record.MACAddress,
			Hostname:   record.Hostname,
			AllocType:  record.AllocTypeName,
			Resource:   record.ResourceURI,
		})
	}
	s.logger().Debug("listed leases", "total", len(records), "dhcp_relevant", len(result.Leases))
	return result, nil
}

// Release finds the first record matching the identifier and releases it.
// MAC comparison is case-insensitive; duplicates are not deduplicated,
// the first match wins.
func (s *Synchronizer) Release(ctx context.Context, identifier string, kind IdentifierKind) error {
	if identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	if kind != IdentifierIP && kind != IdentifierMAC {
		return fmt.Errorf("unknown identifier kind %q", kind)
	}

	records, _, err := s.fetchRecords(ctx, s.API.IPAddressesPath)
	if err != nil {
		return err
	}

	resourceURI := ""
	for _, record := range records {
		if kind == IdentifierIP && record.IP == identifier {
			resourceURI = record.ResourceURI
			break
		}
		if kind == IdentifierMAC && strings.EqualFold(record.MACAddress, identifier) {
			resourceURI = record.ResourceURI
			break
		}
	}
	if resourceURI == "" {
		return fmt.Errorf("lease for %s %q: %w", kind, identifier, ErrNotFound)
	}

	if _, err := s.Client.PostForm(ctx, resourceURI+"?op=release", nil); err != nil {
		return fmt.Errorf("release lease for %s %q: %w", kind, identifier, err)
	}
	s.logger().Info("lease released", string(kind), identifier)
	return nil
}

// Reserve creates a new lease record. Both ip and mac are mandatory.
func (s *Synchronizer) Reserve(ctx context.Context, ip, mac, hostname string) error {
	if ip == "" || mac == "" {
		return fmt.Errorf("both ip and mac are required")
	}

	form := url.Values{
		"ip":       {ip},
		"mac":      {mac},
		"hostname": {hostname},
	}
	if _, err := s.Client.PostForm(ctx, s.API.IPAddressesPath+"?op=reserve", form); err != nil {
		return fmt.Errorf("reserve lease %s (%s): %w", ip, mac, err)
	}
	s.logger().Info("lease reserved", "ip", ip, "mac", mac, "hostname", hostname)
	return nil
}

// Update replaces the named DHCP snippet with a host stanza built from
// the given lease fields. The snippet collection is re-fetched to resolve
// the name into its resource handle.
func (s *Synchronizer) Update(ctx context.Context, name, ip, mac, hostname string) error {
	if name == "" || ip == "" || mac == "" {
		return fmt.Errorf("name, ip and mac are required")
	}
	if hostname == "" {
		hostname = name
	}

	records, _, err := s.fetchRecords(ctx, s.API.SnippetsPath)
	if err != nil {
		return err
	}

	resourceURI := ""
	for _, record := range records {
		if record.Name == name {
			resourceURI = record.ResourceURI
			break
		}
	}
	if resourceURI == "" {
		return fmt.Errorf("snippet %q: %w", name, ErrNotFound)
	}

	form := url.Values{"value": {HostStanza(hostname, mac, ip)}}
	if _, err := s.Client.PutForm(ctx, resourceURI, form); err != nil {
		return fmt.Errorf("update snippet %q: %w", name, err)
	}
	s.logger().Info("snippet updated", "name", name, "ip", ip, "mac", mac)
	return nil
}

// HostStanza renders an ISC dhcpd host declaration for a fixed lease.
func HostStanza(hostname, mac, ip string) string {
	return fmt.Sprintf("host %s {\n    hardware ethernet %s;\n    fixed-address %s;\n}\n", hostname, mac, ip)
}

func (s *Synchronizer) fetchRecords(ctx context.Context, path string) ([]maas.Record, json.RawMessage, error) {
	raw, err := s.Client.Get(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	records, err := maas.DecodeRecords(raw)
	if err != nil {
		return nil, nil, err
	}
	return records, raw, nil
}

func (s *Synchronizer) dhcpRelevant(allocType int) bool {
	for _, t := range s.API.LeaseAllocTypes {
		if allocType == t {
			return true
		}
	}
	return false
}

func (s *Synchronizer) logger() *slog.Logger {
	return logging.Ensure(s.Logger)
}
