package cli

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/trustnxt/c2pa-go/pkg/cose"
)

type keygenOptions struct {
	privateKeyPath string
	certPath       string
	subject        string
	validDays      int
}

// NewKeygenCommand generates a self-signed ES256 signing identity: a PEM
// private key and a matching self-signed certificate, in the shape
// signing.private_key/signing.certificate in c2pa.yaml expect.
//
// Example:
//
//	c2pa keygen
//	c2pa keygen --private-key mykey.pem --cert mycert.pem --subject "CN=my signer"
func NewKeygenCommand() *cobra.Command {
	opts := &keygenOptions{
		privateKeyPath: "signer.key.pem",
		certPath:       "signer.cert.pem",
		subject:        "c2pa-go signer",
		validDays:      365,
	}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a self-signed ES256 signing identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.privateKeyPath, "private-key", opts.privateKeyPath, "path to save the private key (PEM)")
	cmd.Flags().StringVar(&opts.certPath, "cert", opts.certPath, "path to save the certificate (PEM)")
	cmd.Flags().StringVar(&opts.subject, "subject", opts.subject, "certificate common name")
	cmd.Flags().IntVar(&opts.validDays, "valid-days", opts.validDays, "certificate validity period in days")

	return cmd
}

func runKeygen(cmd *cobra.Command, opts *keygenOptions) error {
	if verbose {
		fmt.Fprintln(cmd.OutOrStdout(), "Generating ES256 (ECDSA P-256) signing identity...")
	}

	keyPair, err := cose.GenerateES256KeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}

	keyPEM, err := cose.ExportPrivateKeyToPEM(keyPair.Private)
	if err != nil {
		return fmt.Errorf("failed to export private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate certificate serial number: %w", err)
	}

	var name pkix.Name
	name.CommonName = opts.subject
	notBefore := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               name,
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(0, 0, opts.validDays),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &keyPair.Private.PublicKey, keyPair.Private)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	if err := os.WriteFile(opts.privateKeyPath, []byte(keyPEM), 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(opts.certPath, certPEM, 0644); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}

	thumbprint, err := cose.ComputeCOSEKeyThumbprint(&keyPair.Private.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to compute key thumbprint: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "signing identity generated\n")
	fmt.Fprintf(out, "  thumbprint:  %s\n", thumbprint)
	fmt.Fprintf(out, "  algorithm:   ES256 (ECDSA P-256 with SHA-256)\n")
	fmt.Fprintf(out, "  private key: %s\n", opts.privateKeyPath)
	fmt.Fprintf(out, "  certificate: %s (self-signed, add to the trust store as an anchor before validating)\n", opts.certPath)

	return nil
}
