package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/trustnxt/c2pa-go/internal/metrics"
	"github.com/trustnxt/c2pa-go/pkg/asset"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/trust"
	"github.com/trustnxt/c2pa-go/pkg/validator"
)

// NewValidateCommand runs the validator's depth-first check traversal
// against an asset and prints every recorded result.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <asset>",
		Short: "Validate an asset's embedded manifest store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, path string) error {
	c := GetConfig()

	trustStore, err := trust.Open(trust.Options{
		Path:      c.TrustStore.Path,
		EnableWAL: c.TrustStore.EnableWAL,
	})
	if err != nil {
		return fmt.Errorf("opening trust store: %w", err)
	}
	defer trustStore.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading asset: %w", err)
	}
	a, err := asset.OpenBytes(data)
	if err != nil {
		return fmt.Errorf("opening asset: %w", err)
	}

	metrics.Register()

	v := validator.New(cryptoprovider.New(), trustStore)
	start := time.Now()
	report, err := v.ValidateAsset(context.Background(), a)
	metrics.ValidationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("validating asset: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		status := "PASS"
		if !r.Success {
			status = "FAIL"
		}
		metrics.ValidationCodes.WithLabelValues(string(r.Code)).Inc()
		fmt.Fprintf(out, "[%s] %-40s %s\n", status, r.Code, r.Explanation)
	}

	if !report.Success() {
		metrics.ValidationOutcomes.WithLabelValues("failure").Inc()
		return fmt.Errorf("validation failed: %d of %d checks failed", len(report.Failures()), len(report.Results))
	}
	metrics.ValidationOutcomes.WithLabelValues("success").Inc()
	fmt.Fprintln(out, "all checks passed")
	return nil
}
