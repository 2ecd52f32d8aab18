// Package receipt issues, stores and serves the PDF rent receipts of paid payments.
package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/blob"
	"github.com/Madofly35/GestLoc/internal/metrics"
	"github.com/Madofly35/GestLoc/internal/payment"
)

//go:generate mockgen -source=engine.go -destination=repository_mock.go -package=receipt
type Repository interface {
	// Save inserts the receipt of a payment or overwrites it in place, clearing any
	// revocation. It fails with apperr.ErrConflict unless the payment is still paid on paidOn.
	Save(ctx context.Context, r *payment.Receipt, paidOn time.Time) error
	TouchDownloaded(ctx context.Context, id uuid.UUID, at time.Time) error
	// DeleteRevoked removes revoked receipts and returns their storage paths.
	DeleteRevoked(ctx context.Context) ([]string, error)
}

// Payments loads payments with their lease chain and receipt.
type Payments interface {
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	ListPaidWithoutReceipt(ctx context.Context) ([]*payment.Payment, error)
}

type Renderer interface {
	Render(d Document) ([]byte, error)
}

// Signer seals rendered bytes. A failing signer degrades the receipt to unsigned.
type Signer interface {
	Sign(pdf []byte) ([]byte, error)
}

const contentType = "application/pdf"

type Config struct {
	Bucket          string
	URLTTL          time.Duration
	VerificationURL string
	Owner           Owner
	Now             func() time.Time
}

type Engine struct {
	repo     Repository
	payments Payments
	store    blob.Store
	hasher   *Hasher
	renderer Renderer
	signer   Signer
	cfg      Config
}

// NewEngine wires the receipt engine. signer may be nil to issue unsigned receipts.
func NewEngine(repo Repository, payments Payments, store blob.Store, hasher *Hasher, renderer Renderer, signer Signer, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{
		repo:     repo,
		payments: payments,
		store:    store,
		hasher:   hasher,
		renderer: renderer,
		signer:   signer,
		cfg:      cfg,
	}
}

// Path is the storage key of the receipt of p, derived from the due month so
// regenerating a receipt always lands on the same object.
func Path(p *payment.Payment) string {
	return fmt.Sprintf("tenant_%s/%d/%02d/receipt_%s.pdf",
		p.Lease.TenantID, p.DueDate.Year(), int(p.DueDate.Month()), p.ID)
}

// Filename is the name offered to browsers downloading the receipt of p.
func Filename(p *payment.Payment) string {
	return fmt.Sprintf("quittance_%02d_%d_%s.pdf", int(p.DueDate.Month()), p.DueDate.Year(), p.ID)
}

// Issue generates the receipt of a paid payment, uploads it and records it.
// Issuing twice overwrites the same object and row.
func (e *Engine) Issue(ctx context.Context, p *payment.Payment) (*payment.Receipt, error) {
	r, _, err := e.issue(ctx, p)
	return r, err
}

func (e *Engine) issue(ctx context.Context, p *payment.Payment) (r *payment.Receipt, pdf []byte, err error) {
	start := time.Now()

	defer func() {
		outcome := "unsigned"

		switch {
		case err != nil:
			outcome = "failed"
		case r.Signed:
			outcome = "signed"
		}

		metrics.ReceiptsGeneratedTotal.WithLabelValues(outcome).Inc()
		metrics.ReceiptGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	if !p.Paid() || p.PaymentDate == nil {
		return nil, nil, apperr.Conflict("payment %s is not paid", p.ID)
	}

	if p.Lease == nil || !p.Lease.Complete() {
		return nil, nil, apperr.Incomplete("payment %s is missing its tenant, room or property", p.ID)
	}

	now := e.cfg.Now()
	hash := e.hasher.Sum(p.ID, p.LeaseID, *p.PaymentDate)

	doc := newDocument(e.cfg.Owner, p, hash, e.cfg.VerificationURL, now)

	doc.QR, err = QRCode(doc.VerifyURL)
	if err != nil {
		return nil, nil, err
	}

	pdf, err = e.renderer.Render(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("rendering receipt of payment %s: %w", p.ID, err)
	}

	signed := false

	if e.signer != nil {
		sealed, err := e.signer.Sign(pdf)
		if err != nil {
			slog.Warn("receipt signing failed, storing unsigned", "payment_id", p.ID, "error", err)
		} else {
			pdf, signed = sealed, true
		}
	}

	obj, err := e.store.Upload(ctx, e.cfg.Bucket, Path(p), pdf, contentType)
	if err != nil {
		return nil, nil, apperr.Storage("uploading receipt", err)
	}

	url, err := e.store.SignedURL(ctx, e.cfg.Bucket, obj.Path, e.cfg.URLTTL)
	if err != nil {
		slog.Warn("signing receipt url failed, keeping upload url", "payment_id", p.ID, "error", err)
		url = obj.URL
	}

	r = &payment.Receipt{
		PaymentID:        p.ID,
		StoragePath:      obj.Path,
		StorageURL:       url,
		VerificationHash: hash,
		Signed:           signed,
		GeneratedAt:      now,
	}

	if err := e.repo.Save(ctx, r, *p.PaymentDate); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			// The payment went back to pending while the receipt was being generated.
			e.Purge(ctx, []string{obj.Path})
		}

		return nil, nil, fmt.Errorf("saving receipt of payment %s: %w", p.ID, err)
	}

	slog.Info("receipt issued", "payment_id", p.ID, "path", r.StoragePath, "signed", signed)

	return r, pdf, nil
}

// Artifact is a receipt ready to be served.
type Artifact struct {
	Receipt  *payment.Receipt
	Filename string
	Data     []byte
}

// Download returns the receipt of a paid payment. A receipt that was never
// generated, was revoked or whose object vanished from storage is generated again
// at the same path.
func (e *Engine) Download(ctx context.Context, paymentID uuid.UUID) (*Artifact, error) {
	p, err := e.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !p.Paid() {
		return nil, apperr.Conflict("payment %s is not paid", paymentID)
	}

	r, data, err := e.fetch(ctx, p)
	if err != nil {
		return nil, err
	}

	now := e.cfg.Now()
	if err := e.repo.TouchDownloaded(ctx, r.ID, now); err != nil {
		return nil, fmt.Errorf("recording download: %w", err)
	}

	r.DownloadedAt = &now

	return &Artifact{Receipt: r, Filename: Filename(p), Data: data}, nil
}

func (e *Engine) fetch(ctx context.Context, p *payment.Payment) (*payment.Receipt, []byte, error) {
	if !p.HasReceipt() {
		return e.issue(ctx, p)
	}

	data, err := e.store.Download(ctx, e.cfg.Bucket, p.Receipt.StoragePath)
	if errors.Is(err, blob.ErrNotFound) {
		slog.Warn("receipt artifact missing, regenerating", "payment_id", p.ID, "path", p.Receipt.StoragePath)
		metrics.ReceiptRegenerationsTotal.Inc()

		r, data, err := e.issue(ctx, p)
		if err != nil {
			return nil, nil, err
		}

		r.DownloadedAt = p.Receipt.DownloadedAt

		return r, data, nil
	}

	if err != nil {
		return nil, nil, apperr.Storage("downloading receipt", err)
	}

	return p.Receipt, data, nil
}

// Link makes sure the receipt of a paid payment exists and returns a fresh signed URL to it.
func (e *Engine) Link(ctx context.Context, paymentID uuid.UUID) (string, error) {
	a, err := e.Download(ctx, paymentID)
	if err != nil {
		return "", err
	}

	url, err := e.store.SignedURL(ctx, e.cfg.Bucket, a.Receipt.StoragePath, e.cfg.URLTTL)
	if err != nil {
		return "", apperr.Storage("signing receipt url", err)
	}

	return url, nil
}

// SyncReport counts the outcome of a Sync run.
type SyncReport struct {
	Generated int
	Failed    int
}

// Sync issues a receipt for every paid payment lacking an active one.
func (e *Engine) Sync(ctx context.Context) (SyncReport, error) {
	var report SyncReport

	payments, err := e.payments.ListPaidWithoutReceipt(ctx)
	if err != nil {
		return report, fmt.Errorf("listing payments without receipt: %w", err)
	}

	for _, p := range payments {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if _, err := e.Issue(ctx, p); err != nil {
			slog.Error("receipt sync failed", "payment_id", p.ID, "error", err)
			report.Failed++

			continue
		}

		report.Generated++
	}

	return report, nil
}

// Purge deletes stored artifacts. Failures are logged and otherwise ignored.
func (e *Engine) Purge(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	if err := e.store.Delete(ctx, e.cfg.Bucket, paths...); err != nil {
		slog.Error("purging receipt artifacts failed", "count", len(paths), "error", err)
	}
}

// PurgeRevoked deletes revoked receipts and their artifacts and returns how many were removed.
func (e *Engine) PurgeRevoked(ctx context.Context) (int, error) {
	paths, err := e.repo.DeleteRevoked(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting revoked receipts: %w", err)
	}

	e.Purge(ctx, paths)

	return len(paths), nil
}
