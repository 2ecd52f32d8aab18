package receipt

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"

	"github.com/Madofly35/GestLoc/internal/money"
)

// PDFRenderer lays receipts out as A4 PDF documents.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

var (
	title    = props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center}
	subtitle = props.Text{Size: 14, Align: align.Center}
	heading  = props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}
	body     = props.Text{Size: 11}
	small    = props.Text{Size: 8, Align: align.Center}
)

func eur(c money.Cents) string {
	return c.Format(language.French)
}

func (r *PDFRenderer) Render(d Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(20).
		WithTopMargin(15).
		WithRightMargin(20).
		WithTitle("Quittance de loyer - "+d.TenantName, true).
		WithAuthor(d.Owner.Name, true).
		WithSubject("Quittance de loyer", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(
		text.NewRow(12, "QUITTANCE DE LOYER", title),
		text.NewRow(10, d.PeriodLabel(), subtitle),
	)
	m.AddRows(space())

	m.AddRows(lines(heading, d.Owner.Name)...)
	m.AddRows(lines(body,
		d.Owner.Company,
		d.Owner.Address,
		d.Owner.PostalCode+" "+d.Owner.City,
		siret(d.Owner.SIRET),
	)...)
	m.AddRows(space())

	m.AddRows(lines(heading, "LOCATAIRE :")...)
	m.AddRows(lines(body,
		d.TenantName,
		d.PropertyName+" - Chambre "+d.RoomNumber,
		d.Address,
		d.PostalCode+" "+d.City,
	)...)
	m.AddRows(space())

	m.AddRows(lines(heading, "DÉTAILS DU PAIEMENT")...)
	m.AddRows(lines(body,
		"Loyer : "+eur(d.Rent),
		"Charges : "+eur(d.Charges),
		"Total : "+eur(d.Total),
	)...)
	m.AddRows(space())

	m.AddRows(text.NewRow(24, acknowledgement(d), body))
	m.AddRows(space())

	m.AddRows(lines(body,
		fmt.Sprintf("Fait à %s, le %s", d.Owner.City, d.IssuedAt.Format("02/01/2006")),
		"Signature électronique sécurisée :",
	)...)

	if len(d.QR) > 0 {
		m.AddRow(40, image.NewFromBytesCol(12, d.QR, extension.Png, props.Rect{Center: true, Percent: 100}))
	}

	m.AddRows(
		text.NewRow(5, "Pour vérifier l'authenticité de ce document, scannez le QR code ci-dessus", small),
		text.NewRow(5, "ou visitez "+d.VerifyURL, small),
		text.NewRow(5, "ID de vérification : "+d.ShortHash(), small),
		text.NewRow(5, "Document émis le "+d.IssuedAt.Format("02/01/2006 15:04:05"), small),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("rendering receipt: %w", err)
	}

	return doc.GetBytes(), nil
}

func acknowledgement(d Document) string {
	return fmt.Sprintf(
		"Je soussigné %s, propriétaire du logement désigné ci-dessus, déclare avoir reçu de %s "+
			"la somme de %s (loyer : %s, charges : %s) au titre du loyer et des charges "+
			"pour la période du 1er au dernier jour du mois de %s.",
		d.Owner.Name, d.TenantName, eur(d.Total), eur(d.Rent), eur(d.Charges), d.PeriodLabel(),
	)
}

func siret(s string) string {
	if s == "" {
		return ""
	}

	return "SIRET : " + s
}

// lines renders one row per non-empty value.
func lines(style props.Text, values ...string) []core.Row {
	var rows []core.Row

	for _, v := range values {
		if v == "" {
			continue
		}

		rows = append(rows, text.NewRow(6, v, style))
	}

	return rows
}

func space() core.Row {
	return text.NewRow(6, "")
}
