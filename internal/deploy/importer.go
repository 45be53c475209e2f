// Package deploy imports contract ABIs listed in a deployments manifest.
package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/abistore"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
)

// Manifest is the structure of a deployments.json manifest.
type Manifest struct {
	Contracts map[string]map[string]Entry `json:"contracts"`
}

// Entry is a single contract deployment. ABIUrl may be an http(s) URL or a
// path relative to the manifest.
type Entry struct {
	Address string `json:"address"`
	ABIUrl  string `json:"abi_url"`
}

// Imported describes one ABI saved from the manifest.
type Imported struct {
	Name     string
	Contract string
	Network  string
	Address  string
}

// Failure is a manifest entry whose ABI could not be imported.
type Failure struct {
	Contract string
	Network  string
	Err      error
}

// Report is the outcome of an import.
type Report struct {
	Imported []Imported
	Failed   []Failure
}

// Importer fetches manifests and saves their ABIs.
type Importer struct {
	abis   *abistore.Manager
	client *http.Client
	log    *zap.Logger
}

// NewImporter creates an Importer saving into abis. A nil logger is replaced
// with a no-op one.
func NewImporter(abis *abistore.Manager, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		abis:   abis,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

// Import reads the manifest at source and saves every listed ABI. When
// network is set only that network's deployments are imported and ABIs are
// saved under the contract name; otherwise names carry an "@network" suffix.
// A failed entry does not stop the others.
func (im *Importer) Import(ctx context.Context, source, network string) (*Report, error) {
	m, err := im.fetchManifest(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}

	report := &Report{}
	for _, name := range sortedKeys(m.Contracts) {
		networks := m.Contracts[name]
		for _, net := range sortedKeys(networks) {
			if network != "" && !strings.EqualFold(net, network) {
				continue
			}
			entry := networks[net]
			saveAs := name
			if network == "" {
				saveAs = name + "@" + net
			}
			if err := im.importOne(ctx, source, saveAs, entry); err != nil {
				im.log.Warn("skipping manifest entry",
					zap.String("contract", name), zap.String("network", net), zap.Error(err))
				report.Failed = append(report.Failed, Failure{Contract: name, Network: net, Err: err})
				continue
			}
			report.Imported = append(report.Imported, Imported{
				Name:     saveAs,
				Contract: name,
				Network:  net,
				Address:  entry.Address,
			})
		}
	}
	im.log.Info("manifest imported",
		zap.String("source", source),
		zap.Int("imported", len(report.Imported)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

func (im *Importer) importOne(ctx context.Context, source, name string, e Entry) error {
	if e.ABIUrl == "" {
		return fmt.Errorf("%w: no abi_url", contract.ErrInvalidABI)
	}
	if e.Address != "" {
		if _, err := contract.ParseAddress(e.Address); err != nil {
			return err
		}
	}
	raw, err := im.read(ctx, resolveRef(source, e.ABIUrl))
	if err != nil {
		return err
	}
	text, err := contract.ExtractABI(raw)
	if err != nil {
		return err
	}
	return im.abis.SaveAbi(name, string(text))
}

func (im *Importer) fetchManifest(ctx context.Context, source string) (*Manifest, error) {
	body, err := im.read(ctx, source)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// read loads ref over HTTP or from disk.
func (im *Importer) read(ctx context.Context, ref string) ([]byte, error) {
	if !isURL(ref) {
		return os.ReadFile(ref)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := im.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", ref, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// resolveRef makes a relative ABI path relative to a file manifest.
func resolveRef(source, ref string) string {
	if isURL(ref) || filepath.IsAbs(ref) || isURL(source) {
		return ref
	}
	return filepath.Join(filepath.Dir(source), ref)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
