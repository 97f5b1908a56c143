package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/trustnxt/c2pa-go/internal/config"
	"github.com/trustnxt/c2pa-go/pkg/trust"
)

func writeTestSigningIdentity(t *testing.T, dir string) (keyPath, certPath string) {
	t.Helper()

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	keyPath = filepath.Join(dir, "signer.key.pem")
	certPath = filepath.Join(dir, "signer.cert.pem")
	opts := &keygenOptions{privateKeyPath: keyPath, certPath: certPath, subject: "CN=test signer", validDays: 1}
	if err := runKeygen(cmd, opts); err != nil {
		t.Fatalf("runKeygen: %v", err)
	}
	return keyPath, certPath
}

func minimalJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}
}

func TestSignReadValidateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	keyPath, certPath := writeTestSigningIdentity(t, dir)

	inputPath := filepath.Join(dir, "input.jpg")
	if err := os.WriteFile(inputPath, minimalJPEG(), 0644); err != nil {
		t.Fatalf("writing input asset: %v", err)
	}
	outputPath := filepath.Join(dir, "output.jpg")

	trustDBPath := filepath.Join(dir, "trust.db")
	store, err := trust.Open(trust.Options{Path: trustDBPath, EnableWAL: true})
	if err != nil {
		t.Fatalf("opening trust store: %v", err)
	}

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		t.Fatalf("reading cert: %v", err)
	}
	chain, err := parseCertChainPEM(certPEM)
	if err != nil {
		t.Fatalf("parsing cert: %v", err)
	}
	if err := store.Add(trust.Anchor{
		Fingerprint: trust.Fingerprint(chain[0]),
		Subject:     chain[0].Subject.String(),
		CertDER:     chain[0].Raw,
	}); err != nil {
		t.Fatalf("adding trust anchor: %v", err)
	}
	store.Close()

	cfg = &config.Config{
		TrustStore: config.TrustStoreConfig{Path: trustDBPath, EnableWAL: true},
		Claims: config.ClaimsConfig{
			Dialect:              "c2pa.claim",
			DefaultHashAlgorithm: "sha256",
			ClaimGenerator:       "c2pa-go-test/0.1",
		},
		Signing: config.SigningConfig{
			PrivateKey:       keyPath,
			Certificate:      certPath,
			DefaultAlgorithm: "ES256",
		},
	}
	t.Cleanup(func() { cfg = nil })

	signCmd := &cobra.Command{}
	var signOut bytes.Buffer
	signCmd.SetOut(&signOut)
	signOutput = outputPath
	signActions = ""
	if err := runSign(signCmd, inputPath); err != nil {
		t.Fatalf("runSign: %v", err)
	}

	readCmd := &cobra.Command{}
	var readOut bytes.Buffer
	readCmd.SetOut(&readOut)
	if err := runRead(readCmd, outputPath); err != nil {
		t.Fatalf("runRead: %v", err)
	}
	if !bytes.Contains(readOut.Bytes(), []byte("c2pa.manifest")) {
		t.Errorf("expected read output to mention the manifest label, got: %s", readOut.String())
	}

	validateCmd := &cobra.Command{}
	var validateOut bytes.Buffer
	validateCmd.SetOut(&validateOut)
	if err := runValidate(validateCmd, outputPath); err != nil {
		t.Fatalf("runValidate: %v (output: %s)", err, validateOut.String())
	}
}

func TestSignRejectsMissingSigningKey(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.jpg")
	if err := os.WriteFile(inputPath, minimalJPEG(), 0644); err != nil {
		t.Fatalf("writing input asset: %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.Signing.PrivateKey = filepath.Join(dir, "does-not-exist.pem")
	t.Cleanup(func() { cfg = nil })

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	signOutput = filepath.Join(dir, "out.jpg")
	signActions = ""

	if err := runSign(cmd, inputPath); err == nil {
		t.Error("expected an error when the signing key file does not exist")
	}
}
