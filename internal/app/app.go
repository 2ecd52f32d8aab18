// Package app assembles the stores and services shared by the API server and the CLI.
package app

import (
	"fmt"

	"github.com/Madofly35/GestLoc/internal/blob"
	"github.com/Madofly35/GestLoc/internal/blob/fs"
	"github.com/Madofly35/GestLoc/internal/blob/memory"
	"github.com/Madofly35/GestLoc/internal/blob/supabase"
	"github.com/Madofly35/GestLoc/internal/config"
	"github.com/Madofly35/GestLoc/internal/database"
	"github.com/Madofly35/GestLoc/internal/document"
	documentstore "github.com/Madofly35/GestLoc/internal/document/store"
	"github.com/Madofly35/GestLoc/internal/lease"
	leasestore "github.com/Madofly35/GestLoc/internal/lease/store"
	"github.com/Madofly35/GestLoc/internal/payment"
	paymentstore "github.com/Madofly35/GestLoc/internal/payment/store"
	"github.com/Madofly35/GestLoc/internal/property"
	propertystore "github.com/Madofly35/GestLoc/internal/property/store"
	"github.com/Madofly35/GestLoc/internal/receipt"
	receiptstore "github.com/Madofly35/GestLoc/internal/receipt/store"
	"github.com/Madofly35/GestLoc/internal/tenant"
	tenantstore "github.com/Madofly35/GestLoc/internal/tenant/store"
	"github.com/Madofly35/GestLoc/internal/verification"
)

type App struct {
	DB    *database.DB
	Blobs blob.Store
	// FS is the filesystem driver behind Blobs, nil for the other drivers.
	FS *fs.Store

	Receipts     *receipt.Engine
	Properties   *property.Service
	Tenants      *tenant.Service
	Leases       *lease.Service
	Payments     *payment.Service
	Documents    *document.Service
	Verification *verification.Service
}

func New(cfg *config.Config) (*App, error) {
	db, err := database.New(cfg.ConnectionString(), database.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		AcquireTimeout:  cfg.DB.AcquireTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	a, err := build(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return a, nil
}

func build(cfg *config.Config, db *database.DB) (*App, error) {
	store, fsStore, err := newBlobStore(cfg)
	if err != nil {
		return nil, err
	}

	var signer receipt.Signer
	if cfg.Receipt.SigningEnabled {
		s, err := receipt.NewSigner(cfg.Receipt.HashSecret, cfg.Receipt.SignerName)
		if err != nil {
			return nil, fmt.Errorf("creating receipt signer: %w", err)
		}

		signer = s
	}

	var (
		hasher   = receipt.NewHasher(cfg.Receipt.HashSecret)
		payments = paymentstore.New(db)
	)

	engine := receipt.NewEngine(receiptstore.New(db), payments, store, hasher, receipt.NewPDFRenderer(), signer, receipt.Config{
		Bucket:          cfg.Storage.ReceiptsBucket,
		URLTTL:          cfg.Storage.URLTTL,
		VerificationURL: cfg.Receipt.VerificationURL,
		Owner: receipt.Owner{
			Name:       cfg.Owner.Name,
			Company:    cfg.Owner.Company,
			Address:    cfg.Owner.Address,
			PostalCode: cfg.Owner.PostalCode,
			City:       cfg.Owner.City,
			SIRET:      cfg.Owner.SIRET,
		},
	})

	return &App{
		DB:           db,
		Blobs:        store,
		FS:           fsStore,
		Receipts:     engine,
		Properties:   property.NewService(propertystore.New(db), engine),
		Tenants:      tenant.NewService(tenantstore.New(db), engine),
		Leases:       lease.NewService(leasestore.New(db), engine),
		Payments:     payment.NewService(payments, engine, payment.Config{PurgeOnRevoke: cfg.Receipt.PurgeOnRevoke}),
		Documents:    document.NewService(documentstore.New(db), store, documentConfig(cfg)),
		Verification: verification.NewService(payments, hasher, nil),
	}, nil
}

func documentConfig(cfg *config.Config) document.Config {
	return document.Config{
		Buckets: map[document.Type]string{
			document.TypeContract: cfg.Storage.ContractsBucket,
			document.TypeDocument: cfg.Storage.DocumentsBucket,
			document.TypeTicket:   cfg.Storage.TicketsBucket,
		},
		URLTTL: cfg.Storage.URLTTL,
	}
}

func newBlobStore(cfg *config.Config) (blob.Store, *fs.Store, error) {
	switch cfg.Storage.Driver {
	case "fs":
		s := fs.New(cfg.Storage.Dir, cfg.App.PublicURL, []byte(cfg.Storage.SigningKey))
		return blob.Instrument(s, "fs"), s, nil
	case "supabase":
		return blob.Instrument(supabase.New(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey), "supabase"), nil, nil
	case "memory":
		return blob.Instrument(memory.New(cfg.App.PublicURL+"/memory/"), "memory"), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func (a *App) Close() error {
	return a.DB.Close()
}
