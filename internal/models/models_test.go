package models

import (
	"testing"
)

func TestSettlementDatePrecedence(t *testing.T) {
	tests := []struct {
		name string
		tx   RawTransaction
		want string
	}{
		{
			name: "booking date wins over everything",
			tx: RawTransaction{
				BookingDate:     "2025-10-28",
				BookingDateTime: "2025-10-29T10:00:00Z",
				ValueDate:       "2025-10-30",
				ValueDateTime:   "2025-10-31T10:00:00Z",
			},
			want: "2025-10-28",
		},
		{
			name: "booking datetime when booking date absent",
			tx: RawTransaction{
				BookingDateTime: "2025-10-29T10:00:00Z",
				ValueDate:       "2025-10-30",
			},
			want: "2025-10-29",
		},
		{
			name: "value date when booking fields absent",
			tx: RawTransaction{
				ValueDate:     "2025-10-30",
				ValueDateTime: "2025-10-31T10:00:00Z",
			},
			want: "2025-10-30",
		},
		{
			name: "value datetime as last resort",
			tx:   RawTransaction{ValueDateTime: "2025-10-31T10:00:00Z"},
			want: "2025-10-31",
		},
		{
			name: "no date fields at all",
			tx:   RawTransaction{},
			want: "",
		},
		{
			name: "unparseable booking date falls through to value date",
			tx: RawTransaction{
				BookingDate: "not-a-date",
				ValueDate:   "2025-10-30",
			},
			want: "2025-10-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.SettlementDate(); got != tt.want {
				t.Errorf("SettlementDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"calendar date", "2025-10-28", "2025-10-28", true},
		{"rfc3339", "2025-10-28T14:13:00Z", "2025-10-28", true},
		{"rfc3339 with offset", "2025-10-28T14:13:00+02:00", "2025-10-28", true},
		{"datetime without zone", "2025-10-28T14:13:00", "2025-10-28", true},
		{"datetime with space", "2025-10-28 14:13:00", "2025-10-28", true},
		{"surrounding whitespace", "  2025-10-28  ", "2025-10-28", true},
		{"empty", "", "", false},
		{"garbage", "28/10/2025", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NormalizeDate(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTransactionAmountDecimal(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr bool
	}{
		{"negative amount", "-8.00", "-8", false},
		{"positive amount", "50.00", "50", false},
		{"high precision", "0.001", "0.001", false},
		{"empty", "", "", true},
		{"garbage", "eight", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := TransactionAmount{Amount: tt.amount, Currency: "EUR"}.Decimal()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decimal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && d.String() != tt.want {
				t.Errorf("Decimal() = %s, want %s", d.String(), tt.want)
			}
		})
	}
}

func TestRemittancePreference(t *testing.T) {
	tests := []struct {
		name string
		tx   RawTransaction
		want string
	}{
		{
			name: "unstructured field preferred",
			tx: RawTransaction{
				RemittanceInformationUnstructured:      "Bonifico ordinario",
				RemittanceInformationUnstructuredArray: []string{"ignored"},
				RemittanceInformationStructured:        "ignored too",
			},
			want: "Bonifico ordinario",
		},
		{
			name: "array joined with spaces",
			tx: RawTransaction{
				RemittanceInformationUnstructuredArray: []string{"Bonifico", "ordinario"},
			},
			want: "Bonifico ordinario",
		},
		{
			name: "structured as last resort",
			tx:   RawTransaction{RemittanceInformationStructured: "RF18 5390 0754 7034"},
			want: "RF18 5390 0754 7034",
		},
		{
			name: "nothing present",
			tx:   RawTransaction{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.Remittance(); got != tt.want {
				t.Errorf("Remittance() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequisitionStatusIsLinked(t *testing.T) {
	if !RequisitionLinked.IsLinked() {
		t.Error("LN should be linked")
	}

	for _, status := range []RequisitionStatus{RequisitionCreated, RequisitionExpired, RequisitionRejected, RequisitionSuspended} {
		if status.IsLinked() {
			t.Errorf("status %s should not be linked", status)
		}
	}
}
