package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240122120000[0:GMT]
<TRNAMT>2000.00
<FITID>2024012201
<NAME>PAYROLL DEPOSIT
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name            string
		ofxData         string
		expectedCount   int
		expectedCredits int
		expectedError   bool
	}{
		{
			name:            "bank statement skips credits",
			ofxData:         sampleBankOFX,
			expectedCount:   3,
			expectedCredits: 1,
		},
		{
			name:          "credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewParser().Parse(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Candidates, tt.expectedCount)
			assert.Equal(t, tt.expectedCredits, result.Credits)
			assert.Equal(t, 1, result.Statements)
		})
	}
}

func TestParse_BankCandidates(t *testing.T) {
	result, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, result.Candidates, 3)

	first := result.Candidates[0]
	assert.Equal(t, "2024011501", first.FitID)
	assert.Equal(t, "STARBUCKS STORE #1234", first.Payee)
	assert.Equal(t, int64(2550), first.Amount)
	assert.Equal(t, "1234567890", first.Account)
	assert.Equal(t, 2024, first.Posted.Year())
	assert.Equal(t, time.January, first.Posted.Month())
	assert.Equal(t, 15, first.Posted.Day())

	assert.Equal(t, int64(12500), result.Candidates[1].Amount)
	assert.Equal(t, int64(50000), result.Candidates[2].Amount)
	assert.Equal(t, "CHECK #1234", result.Candidates[2].Payee)
}

func TestParse_CreditCardCandidates(t *testing.T) {
	result, err := NewParser().Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)

	assert.Equal(t, "CC2024011001", result.Candidates[0].FitID)
	assert.Equal(t, int64(4599), result.Candidates[0].Amount)
	assert.Equal(t, "4111111111111111", result.Candidates[0].Account)
	assert.Equal(t, int64(1500), result.Candidates[1].Amount)
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().Parse(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvert_Amounts(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
		isDebt bool
	}{
		{name: "debit", amount: "-12.34", want: 1234, isDebt: true},
		{name: "sub-cent debit rounds", amount: "-0.005", want: 1, isDebt: true},
		{name: "whole debit", amount: "-7", want: 700, isDebt: true},
		{name: "credit", amount: "42.00", isDebt: false},
		{name: "zero", amount: "0", isDebt: false},
	}

	parser := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tx ofxgo.Transaction
			tx.FiTID = "X1"
			_, ok := tx.TrnAmt.SetString(tt.amount)
			require.True(t, ok)

			got, isDebit, err := parser.convert(tx, "acct")
			require.NoError(t, err)
			assert.Equal(t, tt.isDebt, isDebit)
			if tt.isDebt {
				assert.Equal(t, tt.want, got.Amount)
			}
		})
	}
}

func TestPayeeName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "keep clean name",
			tx:       ofxgo.Transaction{Name: "NETFLIX.COM"},
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
		{
			name:     "generic name falls back to memo",
			tx:       ofxgo.Transaction{Name: "PURCHASE", Memo: "CORNER BAKERY"},
			expected: "CORNER BAKERY",
		},
		{
			name:     "date stamp is dropped",
			tx:       ofxgo.Transaction{Name: "03/14 FARMERS MARKET"},
			expected: "FARMERS MARKET",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "ACH DEBIT 123", Payee: &ofxgo.Payee{Name: "City Water"}},
			expected: "City Water",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, payeeName(tt.tx))
		})
	}
}

func TestCandidate_Expense(t *testing.T) {
	posted := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	c := Candidate{FitID: "2024011501", Posted: posted, Amount: 2550, Payee: "Starbucks"}

	exp := c.Expense("food")
	assert.Equal(t, "ofx-2024011501", exp.ID)
	assert.Equal(t, int64(2550), exp.Amount)
	assert.Equal(t, "food", exp.CategoryID)
	assert.Equal(t, "Starbucks", exp.Note)
	assert.True(t, exp.OccurredAt.Equal(posted))
}
