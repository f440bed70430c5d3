package banks

import (
	"testing"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
)

func widibaTx(remittance, bookingDate, amount string) models.RawTransaction {
	return models.RawTransaction{
		TransactionAmount:                 models.TransactionAmount{Amount: amount, Currency: "EUR"},
		RemittanceInformationUnstructured: remittance,
		BookingDate:                       bookingDate,
	}
}

func TestWidibaNormalize(t *testing.T) {
	normalizer := NewWidiba(NewGeneric())

	tests := []struct {
		name      string
		tx        models.RawTransaction
		wantPayee string
		wantDate  string
	}{
		{
			name: "extracts payee from ESERCENTE field",
			tx: widibaTx(
				"Causale: PAGAM. CIRCUITO INTERNAZ. - Descrizione: DATA 28/10/25 ORA 14.13 LOC.ROMA ESERCENTE: TRENITALIA - PT WL IMP.IN DIV.ORIG 8,00 N.CARTA: 00585328 APPLE PAY",
				"2025-10-28", "-8.00"),
			wantPayee: "TRENITALIA",
			wantDate:  "2025-10-28",
		},
		{
			name:      "falls back to generic title-casing when no rule matches",
			tx:        widibaTx("Bonifico ordinario", "2025-10-28", "-10.00"),
			wantPayee: "Bonifico Ordinario",
			wantDate:  "2025-10-28",
		},
		{
			name: "extracts payee from Caus field in instant transfer",
			tx: widibaTx(
				"Causale: Pagamento Istantaneo - Descrizione: Bon. Ist. A100995029903442481423903200it Data Accett. 28.10.25 * Data Esec. 28.10.25 a Favore Nome Cognome Iban It61c0301508300000004247907 Comm. Bon 0,00 Caus: 048 Regalo",
				"2025-10-28", "-100.00"),
			wantPayee: "Regalo",
			wantDate:  "2025-10-28",
		},
		{
			name: "extracts payee from BANCOMAT Pay transfer",
			tx: widibaTx(
				"Causale: TRASFERIMENTO DENARO BPAY - Descrizione: FILIALE DISPONENTE 00102 BANCOMAT Pay - XXX RICEZIONE DENARO CON BANCOMAT PAY DA NOME COGNOME DATA: 02-06-2025 ORE: 19.45 CAUS: P2P0003XXX BIC: XXX IND:VIA XXX 33",
				"2025-06-02", "50.00"),
			wantPayee: "da nome cognome",
			wantDate:  "2025-06-02",
		},
		{
			name: "extracts payee from SDD direct debit",
			tx: widibaTx(
				"Causale: Addebito Diretto Sdd - Descrizione: Addebito Sdd N. XXXXX a Favore Mfm Investment Ltd Italian Branch Codice Mandato 34336 Importo 200,00 Commissioni 0,00 Spese 0,00 Ni25XXXX",
				"2025-06-02", "-200.00"),
			wantPayee: "Addebito Sdd N. XXXXX a Favore Mfm Investment Ltd Italian Branch",
			wantDate:  "2025-06-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizer.Normalize(tt.tx, true)

			if got.PayeeName != tt.wantPayee {
				t.Errorf("PayeeName = %q, want %q", got.PayeeName, tt.wantPayee)
			}
			if got.Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", got.Date, tt.wantDate)
			}
		})
	}
}

func TestWidibaInstitutionIDs(t *testing.T) {
	ids := NewWidiba(NewGeneric()).InstitutionIDs()
	if len(ids) != 1 || ids[0] != "WIDIBA_WIDIITMM" {
		t.Errorf("InstitutionIDs() = %v, want [WIDIBA_WIDIITMM]", ids)
	}
}

func TestWidibaPreservesRawFields(t *testing.T) {
	tx := widibaTx("ESERCENTE: TRENITALIA - PT WL", "2025-10-28", "-8.00")
	tx.TransactionID = "tx-1"

	got := NewWidiba(NewGeneric()).Normalize(tx, true)

	if got.TransactionID != "tx-1" {
		t.Errorf("TransactionID = %q, want tx-1", got.TransactionID)
	}
	if got.TransactionAmount.Amount != "-8.00" {
		t.Errorf("Amount = %q, want -8.00", got.TransactionAmount.Amount)
	}
	if got.RemittanceInformationUnstructured != tx.RemittanceInformationUnstructured {
		t.Error("remittance field was not preserved")
	}
}

func TestWidibaNormalizeIsIdempotent(t *testing.T) {
	tx := widibaTx("Caus: 048 Regalo", "2025-10-28", "-100.00")
	normalizer := NewWidiba(NewGeneric())

	first := normalizer.Normalize(tx, true)
	second := normalizer.Normalize(tx, true)

	if first.PayeeName != second.PayeeName || first.Date != second.Date {
		t.Errorf("normalize is not idempotent: %+v vs %+v", first, second)
	}
}

func TestWidibaNoDateFields(t *testing.T) {
	tx := widibaTx("ESERCENTE: TRENITALIA - PT WL", "", "-8.00")

	got := NewWidiba(NewGeneric()).Normalize(tx, true)

	if got.PayeeName != "TRENITALIA" {
		t.Errorf("PayeeName = %q, want TRENITALIA", got.PayeeName)
	}
	if got.Date != "" {
		t.Errorf("Date = %q, want empty when no date field is present", got.Date)
	}
}
