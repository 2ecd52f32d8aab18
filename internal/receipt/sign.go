package receipt

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/crypto/hkdf"

	"github.com/Madofly35/GestLoc/internal/apperr"
)

// Document properties written into signed receipts.
const (
	PropSignature = "GestLocSignature"
	PropDigest    = "GestLocDigest"
	PropSigner    = "GestLocSigner"
	PropSignedAt  = "GestLocSignedAt"
)

const keyInfo = "gestloc receipt signing v1"

// Ed25519Signer seals receipts with a key derived from a server secret. The
// signature covers the SHA-256 digest of the unsigned PDF, the signer name and
// the signing time, and is stored in the PDF document properties.
//
// Embedding the properties rewrites the file, so the digest cannot be recomputed
// from a signed PDF. The seal authenticates the embedded properties only; the
// receipt content is authenticated by its verification hash.
type Ed25519Signer struct {
	key  ed25519.PrivateKey
	name string
	now  func() time.Time
}

func NewSigner(secret, name string) (*Ed25519Signer, error) {
	api.DisableConfigDir()

	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), seed); err != nil {
		return nil, fmt.Errorf("deriving signing key: %w", err)
	}

	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed), name: name, now: time.Now}, nil
}

func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func signedPayload(digest, signedAt, signer string) []byte {
	return []byte(digest + "\n" + signedAt + "\n" + signer)
}

func (s *Ed25519Signer) Sign(pdf []byte) ([]byte, error) {
	sum := sha256.Sum256(pdf)
	digest := hex.EncodeToString(sum[:])
	signedAt := s.now().UTC().Format(time.RFC3339)

	sig := ed25519.Sign(s.key, signedPayload(digest, signedAt, s.name))

	props := map[string]string{
		PropSignature: base64.StdEncoding.EncodeToString(sig),
		PropDigest:    digest,
		PropSigner:    s.name,
		PropSignedAt:  signedAt,
	}

	var out bytes.Buffer
	if err := api.AddProperties(bytes.NewReader(pdf), &out, props, nil); err != nil {
		return nil, fmt.Errorf("embedding signature: %w: %w", apperr.ErrSigning, err)
	}

	return out.Bytes(), nil
}

// VerifySignature checks that the properties embedded by Sign were sealed by pub.
// It does not compare the recorded digest with the document content.
func VerifySignature(pdf []byte, pub ed25519.PublicKey) error {
	props, err := api.Properties(bytes.NewReader(pdf), nil)
	if err != nil {
		return fmt.Errorf("reading document properties: %w: %w", apperr.ErrSigning, err)
	}

	sig, err := base64.StdEncoding.DecodeString(props[PropSignature])
	if err != nil || len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("malformed signature: %w", apperr.ErrSigning)
	}

	if !ed25519.Verify(pub, signedPayload(props[PropDigest], props[PropSignedAt], props[PropSigner]), sig) {
		return fmt.Errorf("signature mismatch: %w", apperr.ErrSigning)
	}

	return nil
}
