package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashbox-api/internal/application/cashbox"
	"github.com/jhoicas/cashbox-api/internal/infrastructure/pdf"
)

func sampleReport() *cashbox.SessionReport {
	return &cashbox.SessionReport{
		Title:       "Cierre de caja",
		GeneratedAt: time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC),
		Staff:       "ana",
		Currency:    "AUD",
		Cash: []cashbox.ReportRow{
			{Denomination: "AUD 50.00", Count: 2, Value: "AUD 100.00"},
			{Denomination: "AUD 5.00", Count: 3, Value: "AUD 15.00"},
		},
		Totals: []cashbox.ReportTotal{
			{Label: "Efectivo en caja", Value: "AUD 115.00"},
			{Label: "Ventas", Value: "AUD 0.00"},
		},
		Activity: []cashbox.ReportActivity{
			{Time: time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC), Type: "CASHOUT", Amount: "AUD 40.00", Staff: "ana", Note: "Cobro fichas AUD 40.00", Reversed: true},
			{Time: time.Date(2026, 10, 16, 21, 5, 0, 0, time.UTC), Type: "REVERSAL", Amount: "AUD 40.00", Staff: "ana"},
		},
	}
}

func TestGenerateSessionReport_DevuelvePDF(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator()
	doc, err := g.GenerateSessionReport(context.Background(), sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, doc)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")), "el documento debe comenzar con la firma PDF")
}

func TestGenerateSessionReport_SinMovimientos(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator()
	rep := sampleReport()
	rep.Cash, rep.Tips, rep.Activity = nil, nil, nil

	doc, err := g.GenerateSessionReport(context.Background(), rep)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestGenerateSessionReport_Nil(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateSessionReport(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerateSessionReport_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pdf.NewMarotoPDFGenerator().GenerateSessionReport(ctx, sampleReport())
	assert.ErrorIs(t, err, context.Canceled)
}
