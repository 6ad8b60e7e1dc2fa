// Package ofx turns OFX/QFX bank and credit card statements into expense
// candidates that can be stored as regular expenses.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/spendlog/internal/model"
	"github.com/Veraticus/spendlog/internal/money"
)

// IDPrefix prefixes the expense id derived from a transaction FITID, which
// makes re-importing the same statement detectable.
const IDPrefix = "ofx-"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tag alone on a line with no closing bracket.
	unterminatedTag = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var payeePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Candidate is one debit from a statement, ready to become an expense.
type Candidate struct {
	Posted  time.Time
	FitID   string
	Payee   string
	Account string
	Amount  int64 // minor units, always positive
}

// ExpenseID is the id the candidate is stored under.
func (c Candidate) ExpenseID() string {
	return IDPrefix + c.FitID
}

// Expense converts the candidate into an expense in categoryID. The payee
// becomes the note.
func (c Candidate) Expense(categoryID string) model.Expense {
	return model.Expense{
		ID:         c.ExpenseID(),
		Amount:     c.Amount,
		CategoryID: categoryID,
		Note:       c.Payee,
		OccurredAt: c.Posted,
	}
}

// Result summarizes one parsed statement file.
type Result struct {
	Candidates []Candidate
	Credits    int // skipped deposits and refunds
	Statements int
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unterminatedTag.ReplaceAllString(content, "$1>")
}

// Parse reads a statement and returns its debits as candidates. Credits are
// counted and skipped.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Result, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	result := &Result{}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			result.Statements++
			if stmt.BankTranList != nil {
				p.collect(result, stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			result.Statements++
			if stmt.BankTranList != nil {
				p.collect(result, stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
			}
		}
	}

	slog.Info("Parsed OFX file",
		"debits", len(result.Candidates),
		"credits_skipped", result.Credits,
		"statements", result.Statements)

	return result, nil
}

func (p *Parser) collect(result *Result, txns []ofxgo.Transaction, account string) {
	for _, tx := range txns {
		candidate, ok, err := p.convert(tx, account)
		if err != nil {
			slog.Warn("Skipping unreadable transaction", "fitid", tx.FiTID, "error", err)
			continue
		}
		if !ok {
			result.Credits++
			continue
		}
		result.Candidates = append(result.Candidates, candidate)
	}
}

// convert returns ok=false for credits and zero-amount rows.
func (p *Parser) convert(tx ofxgo.Transaction, account string) (Candidate, bool, error) {
	if tx.TrnAmt.Sign() >= 0 {
		return Candidate{}, false, nil
	}

	// OFX signs debits negative; expenses are stored positive.
	amount, err := money.Parse(strings.TrimPrefix(tx.TrnAmt.FloatString(2), "-"))
	if err != nil {
		return Candidate{}, false, err
	}
	if amount == 0 {
		return Candidate{}, false, nil
	}

	return Candidate{
		FitID:   string(tx.FiTID),
		Posted:  tx.DtPosted.Time,
		Amount:  amount,
		Payee:   payeeName(tx),
		Account: account,
	}, true, nil
}

// payeeName picks the cleanest merchant description available.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range payeePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps some banks put in front of the merchant.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	default:
		return false
	}
}
