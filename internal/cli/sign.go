package cli

import (
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/trustnxt/c2pa-go/internal/metrics"
	"github.com/trustnxt/c2pa-go/pkg/asset"
	"github.com/trustnxt/c2pa-go/pkg/cose"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
	"github.com/trustnxt/c2pa-go/pkg/manifest"
	"github.com/trustnxt/c2pa-go/pkg/rfc3161"
)

var (
	signOutput  string
	signActions string
)

// NewSignCommand builds a single-manifest claim over an asset, signs it
// with the configured key, and embeds the resulting manifest store.
func NewSignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <asset>",
		Short: "Sign an asset and embed a C2PA manifest store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, args[0])
		},
	}
	cmd.Flags().StringVarP(&signOutput, "output", "o", "", "output file path (required)")
	cmd.Flags().StringVar(&signActions, "actions", "", "path to a JSON file containing the actions list (default: a single c2pa.created action)")
	cmd.MarkFlagRequired("output")
	return cmd
}

func runSign(cmd *cobra.Command, path string) error {
	c := GetConfig()
	provider := cryptoprovider.New()

	hashAlg, err := hashAlgByName(c.Claims.DefaultHashAlgorithm)
	if err != nil {
		return err
	}
	signAlg, err := signAlgByName(c.Signing.DefaultAlgorithm)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading asset: %w", err)
	}
	a, err := asset.OpenBytes(data)
	if err != nil {
		return fmt.Errorf("opening asset: %w", err)
	}

	exclusions, err := a.DataHashExclusions(asset.Range{})
	if err != nil {
		return fmt.Errorf("computing data hash exclusions: %w", err)
	}

	dataHash := &manifest.DataHashAssertion{
		Exclusions: exclusions,
		Name:       "jumbf manifest",
		Algorithm:  hashAlg,
	}
	if err := dataHash.ComputeHash(a, nil, provider); err != nil {
		return fmt.Errorf("computing data hash: %w", err)
	}

	actions, err := loadActions(signActions)
	if err != nil {
		return err
	}

	builder := manifest.NewClaimBuilder(c.Claims.ClaimGenerator, manifest.Dialect(claimsDialect(c.Claims.Dialect)), hashAlg, provider).
		WithInstanceID(uuid.New().String()).
		WithFormat(mimeForKind(a.Kind()))

	if err := builder.AddAssertion(dataHash); err != nil {
		return fmt.Errorf("adding data hash assertion: %w", err)
	}
	if err := builder.AddAssertion(actions); err != nil {
		return fmt.Errorf("adding actions assertion: %w", err)
	}

	claim, assertionBoxes := builder.Build()
	claimBytes, err := claim.Encode()
	if err != nil {
		return fmt.Errorf("encoding claim: %w", err)
	}

	signer, err := loadSigner(c.Signing.PrivateKey, c.Signing.Certificate, signAlg, provider)
	if err != nil {
		return err
	}
	if c.Timestamp.Enabled {
		signer = signer.WithTimeAuthority(rfc3161.NewHTTPProvider(c.Timestamp.Endpoint, provider))
	}

	metrics.Register()
	signStart := time.Now()
	sign1, err := cose.CreateCoseSign1(claimBytes, signer, provider)
	metrics.SignDuration.Observe(time.Since(signStart).Seconds())
	if err != nil {
		return fmt.Errorf("signing claim: %w", err)
	}
	sigBytes, err := cose.EncodeCoseSign1(sign1)
	if err != nil {
		return fmt.Errorf("encoding signature: %w", err)
	}
	metrics.ManifestsSigned.WithLabelValues(signAlg.String()).Inc()

	m := &manifest.Manifest{
		Label:      "c2pa.manifest",
		Claim:      claim,
		Assertions: []manifest.Assertion{dataHash, actions},
		Signature:  sigBytes,
	}

	storeBox, err := manifest.BuildManifestStore([]*manifest.Manifest{m}, [][]*jumbf.Box{assertionBoxes})
	if err != nil {
		return fmt.Errorf("building manifest store: %w", err)
	}
	jumbfBytes, err := jumbf.Serialize(storeBox)
	if err != nil {
		return fmt.Errorf("serializing manifest store: %w", err)
	}

	signed, err := a.WriteManifestStore(jumbfBytes)
	if err != nil {
		return fmt.Errorf("embedding manifest store: %w", err)
	}

	if err := os.WriteFile(signOutput, signed.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "signed %s -> %s (manifest %s)\n", path, signOutput, m.Label)
	return nil
}

func claimsDialect(configured string) string {
	if configured == "" {
		return string(manifest.DialectV1)
	}
	return configured
}

func loadActions(path string) (*manifest.ActionsAssertion, error) {
	if path == "" {
		return &manifest.ActionsAssertion{Actions: []manifest.Action{{Action: "c2pa.created"}}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading actions file: %w", err)
	}
	var actions []manifest.Action
	if err := json.Unmarshal(data, &actions); err != nil {
		return nil, fmt.Errorf("parsing actions file: %w", err)
	}
	return &manifest.ActionsAssertion{Actions: actions}, nil
}

func mimeForKind(k asset.Kind) string {
	switch k {
	case asset.KindJPEG:
		return "image/jpeg"
	case asset.KindPNG:
		return "image/png"
	case asset.KindMP3:
		return "audio/mpeg"
	default:
		return ""
	}
}

// hashAlgByName and signAlgByName parse the short names used in
// c2pa.yaml. They are local to the CLI: pkg/cryptoprovider's enums are
// referenced directly everywhere else in the module, and this is the
// only place that needs to turn a config string back into one.
func hashAlgByName(name string) (cryptoprovider.HashAlg, error) {
	switch name {
	case "sha256":
		return cryptoprovider.HashSHA256, nil
	case "sha384":
		return cryptoprovider.HashSHA384, nil
	case "sha512":
		return cryptoprovider.HashSHA512, nil
	default:
		return 0, fmt.Errorf("unknown hash algorithm %q", name)
	}
}

func signAlgByName(name string) (cryptoprovider.SignAlg, error) {
	switch name {
	case "ES256":
		return cryptoprovider.AlgorithmES256, nil
	case "ES384":
		return cryptoprovider.AlgorithmES384, nil
	case "ES512":
		return cryptoprovider.AlgorithmES512, nil
	case "PS256":
		return cryptoprovider.AlgorithmPS256, nil
	case "PS384":
		return cryptoprovider.AlgorithmPS384, nil
	case "PS512":
		return cryptoprovider.AlgorithmPS512, nil
	case "Ed25519":
		return cryptoprovider.AlgorithmEdDSA, nil
	default:
		return 0, fmt.Errorf("unknown signing algorithm %q", name)
	}
}

// loadSigner reads a PEM-encoded EC private key and certificate chain
// from disk and wraps them in a cose.LocalSigner.
func loadSigner(keyPath, certPath string, alg cryptoprovider.SignAlg, provider cryptoprovider.Provider) (*cose.LocalSigner, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	key, err := cose.ImportPrivateKeyFromPEM(string(keyPEM))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("reading certificate: %w", err)
	}
	chain, err := parseCertChainPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing certificate chain: %w", err)
	}

	signer, err := cose.NewLocalSigner(key, alg, chain, provider)
	if err != nil {
		return nil, fmt.Errorf("building signer: %w", err)
	}
	return signer, nil
}

// parseCertChainPEM decodes every CERTIFICATE block in data, leaf first,
// matching the order cose.Signer.CertificateChain documents. No pack
// library offers PEM certificate parsing, so this is plain
// crypto/x509/encoding/pem.
func parseCertChainPEM(data []byte) ([]*x509.Certificate, error) {
	var chain []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cert)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no certificates found in PEM data")
	}
	return chain, nil
}
