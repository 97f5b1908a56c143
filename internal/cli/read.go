package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trustnxt/c2pa-go/internal/metrics"
	"github.com/trustnxt/c2pa-go/pkg/asset"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
	"github.com/trustnxt/c2pa-go/pkg/manifest"
)

// readManifest is the JSON shape printed by the read command: enough to
// eyeball a manifest without dumping the raw CBOR/JUMBF bytes.
type readManifest struct {
	Label          string   `json:"label"`
	ClaimGenerator string   `json:"claimGenerator"`
	Format         string   `json:"format,omitempty"`
	InstanceID     string   `json:"instanceID,omitempty"`
	HashAlgorithm  string   `json:"hashAlgorithm"`
	Assertions     []string `json:"assertions"`
}

type readResult struct {
	Kind     string         `json:"kind"`
	Active   string         `json:"active"`
	Manifest []readManifest `json:"manifests"`
}

// NewReadCommand dumps an asset's embedded manifest store as JSON.
func NewReadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <asset>",
		Short: "Print an asset's manifest store as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, args[0])
		},
	}
	return cmd
}

func runRead(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading asset: %w", err)
	}

	a, err := asset.OpenBytes(data)
	if err != nil {
		return fmt.Errorf("opening asset: %w", err)
	}

	jumbfBytes, present, err := a.ReadManifestStore()
	if err != nil {
		return fmt.Errorf("reading manifest store: %w", err)
	}
	if !present {
		return fmt.Errorf("asset has no embedded manifest store")
	}

	root, err := jumbf.Parse(jumbfBytes)
	if err != nil {
		return fmt.Errorf("parsing JUMBF box: %w", err)
	}
	store, err := manifest.ParseManifestStore(root)
	if err != nil {
		return fmt.Errorf("parsing manifest store: %w", err)
	}

	active, err := store.Active()
	if err != nil {
		return err
	}

	metrics.Register()
	metrics.ManifestsRead.WithLabelValues(string(a.Kind())).Inc()

	result := readResult{Kind: string(a.Kind()), Active: active.Label}
	for _, m := range store.Manifests {
		rm := readManifest{
			Label:          m.Label,
			ClaimGenerator: m.Claim.ClaimGenerator,
			Format:         m.Claim.Format,
			InstanceID:     m.Claim.InstanceID,
			HashAlgorithm:  m.Claim.HashAlgorithm.String(),
		}
		for _, ref := range m.Claim.Assertions {
			rm.Assertions = append(rm.Assertions, ref.URL)
		}
		result.Manifest = append(result.Manifest, rm)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
