package checks

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-checks/pkg/money"
)

// StatementYear is prefixed to every "MM/DD" fragment. Statements do not
// carry the year next to each check, and it is not inferred from the
// document or the clock, so checks from other years are dated 2024.
const StatementYear = "2024"

// CheckRecord is one check found in a statement. Amount is always <= 0
// because checks are debits.
type CheckRecord struct {
	CheckNumber string
	Date        string
	Amount      decimal.Decimal
}

// Result is the outcome of a scan. Count always equals len(Checks) and
// Total is the sum of the amounts rounded to cents.
type Result struct {
	Checks []CheckRecord
	Count  int
	Total  decimal.Decimal
}

// Expectations are optional caller-supplied values checked after the scan.
// A nil field is not checked.
type Expectations struct {
	Count *int
	Total *decimal.Decimal
}

// Scan slides a three-token window over tokens one position at a time and
// returns a record for every window that classifies as a check. Windows
// overlap, so a token already used in a match is still considered again.
func Scan(tokens []string) []CheckRecord {
	records := make([]CheckRecord, 0)
	for i := 0; i+2 < len(tokens); i++ {
		rec, ok := classify(tokens[i], tokens[i+1], tokens[i+2])
		if ok {
			records = append(records, rec)
		}
	}
	return records
}

func classify(a, b, c string) (CheckRecord, bool) {
	if !IsCheckNumber(a) || !IsDateFragment(b) || !IsAmount(c) {
		return CheckRecord{}, false
	}

	amount, err := money.ParseAmount(c)
	if err != nil {
		return CheckRecord{}, false
	}

	return CheckRecord{
		CheckNumber: a,
		Date:        StatementYear + "/" + b,
		Amount:      amount.Neg(),
	}, true
}

// Summarize builds a Result from records.
func Summarize(records []CheckRecord) Result {
	amounts := make([]decimal.Decimal, len(records))
	for i, r := range records {
		amounts[i] = r.Amount
	}

	return Result{
		Checks: records,
		Count:  len(records),
		Total:  money.RoundCents(money.Sum(amounts)),
	}
}

// Validate checks r against the expectations. The count is checked first;
// totals are compared after rounding both sides to cents.
func (e Expectations) Validate(r Result) error {
	if e.Count != nil && r.Count != *e.Count {
		return &ValidationError{
			Kind:     CountMismatch,
			Found:    decimal.NewFromInt(int64(r.Count)),
			Expected: decimal.NewFromInt(int64(*e.Count)),
		}
	}

	if e.Total != nil && !money.EqualCents(r.Total, *e.Total) {
		return &ValidationError{
			Kind:     TotalMismatch,
			Found:    r.Total,
			Expected: *e.Total,
		}
	}

	return nil
}

// Extraction is a Result together with what was scanned to produce it.
type Extraction struct {
	Result Result
	Tokens int
}

// Extract runs the whole pipeline on already-decoded page texts: join,
// tokenize, scan, summarize, validate. The Extraction is filled in even when
// validation fails so callers can report what was found.
func Extract(pages []string, exp Expectations) (Extraction, error) {
	tokens := Tokenize(JoinPages(pages))
	ext := Extraction{
		Result: Summarize(Scan(tokens)),
		Tokens: len(tokens),
	}
	return ext, exp.Validate(ext.Result)
}

// ExtractText is Extract without the scan details. On a validation failure
// no result is returned.
func ExtractText(pages []string, exp Expectations) (Result, error) {
	ext, err := Extract(pages, exp)
	if err != nil {
		return Result{}, err
	}
	return ext.Result, nil
}
