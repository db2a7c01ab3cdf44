package dataload

import (
	"credit-approval/internal/domain/customer"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	colCustomerID     = "customerid"
	colFirstName      = "firstname"
	colLastName       = "lastname"
	colPhoneNumber    = "phonenumber"
	colMonthlySalary  = "monthlysalary"
	colApprovedLimit  = "approvedlimit"
	colAge            = "age"
	colCurrentDebt    = "currentdebt"
	colLoanID         = "loanid"
	colLoanAmount     = "loanamount"
	colTenure         = "tenure"
	colInterestRate   = "interestrate"
	colMonthlyPayment = "monthlypayment"
	colEMIsPaidOnTime = "emispaidontime"
	colApprovalDate   = "dateofapproval"
	colEndDate        = "enddate"
)

var (
	customerRequired = []string{colCustomerID, colFirstName, colLastName, colPhoneNumber, colMonthlySalary, colApprovedLimit}
	loanRequired     = []string{colCustomerID, colLoanID, colLoanAmount, colTenure, colInterestRate, colMonthlyPayment, colEMIsPaidOnTime, colApprovalDate, colEndDate}
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
}

// ParseCustomers turns a customer sheet into records. Age and Current Debt may
// be absent and default to zero.
func ParseCustomers(rows [][]string) ([]CustomerRecord, error) {
	sheet, err := newSheet(rows, customerRequired)
	if err != nil {
		return nil, err
	}

	var records []CustomerRecord
	for i, raw := range sheet.body {
		if isBlank(raw) {
			continue
		}
		r := sheet.row(i, raw)

		id := r.integer(colCustomerID)
		salary := r.number(colMonthlySalary)
		limit := r.number(colApprovedLimit)
		age := int(r.optionalInteger(colAge))
		debt := r.optionalNumber(colCurrentDebt)
		if r.err != nil {
			return nil, r.err
		}

		records = append(records, CustomerRecord{
			Row: r.line,
			Customer: customer.Customer{
				CustomerID:    id,
				FirstName:     r.text(colFirstName),
				LastName:      r.text(colLastName),
				PhoneNumber:   normalizeNumericText(r.text(colPhoneNumber)),
				Age:           &age,
				MonthlySalary: salary,
				ApprovedLimit: limit,
				CurrentDebt:   debt,
			},
		})
	}
	return records, nil
}

func ParseLoans(rows [][]string) ([]LoanRecord, error) {
	sheet, err := newSheet(rows, loanRequired)
	if err != nil {
		return nil, err
	}

	var records []LoanRecord
	for i, raw := range sheet.body {
		if isBlank(raw) {
			continue
		}
		r := sheet.row(i, raw)

		l := loan.Loan{
			ID:               r.integer(colLoanID),
			CustomerID:       r.integer(colCustomerID),
			LoanAmount:       r.number(colLoanAmount),
			Tenure:           int(r.integer(colTenure)),
			InterestRate:     r.number(colInterestRate),
			MonthlyRepayment: r.number(colMonthlyPayment),
			EMIsPaidOnTime:   int(r.integer(colEMIsPaidOnTime)),
			StartDate:        r.date(colApprovalDate),
			EndDate:          r.date(colEndDate),
		}
		if r.err != nil {
			return nil, r.err
		}
		records = append(records, LoanRecord{Row: r.line, Loan: l})
	}
	return records, nil
}

type sheet struct {
	columns map[string]int
	body    [][]string
}

func newSheet(rows [][]string, required []string) (*sheet, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("", "sheet is empty")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[normalizeHeader(h)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("", "missing columns: "+strings.Join(missing, ", "))
	}

	return &sheet{columns: columns, body: rows[1:]}, nil
}

func (s *sheet) row(index int, cells []string) *row {
	return &row{columns: s.columns, cells: cells, line: index + 2}
}

// row reads typed cells and keeps the first conversion error so a record can be
// parsed field by field before checking.
type row struct {
	columns map[string]int
	cells   []string
	line    int
	err     error
}

func (r *row) text(col string) string {
	i, ok := r.columns[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r *row) fail(col, value, want string) {
	if r.err == nil {
		r.err = apperrors.NewValidationError(col, fmt.Sprintf("row %d: %q is not a valid %s", r.line, value, want))
	}
}

func (r *row) number(col string) float64 {
	v := r.text(col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(col, v, "number")
		return 0
	}
	return f
}

func (r *row) integer(col string) int64 {
	v := r.text(col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		r.fail(col, v, "integer")
		return 0
	}
	return int64(f)
}

func (r *row) optionalNumber(col string) float64 {
	if r.text(col) == "" {
		return 0
	}
	return r.number(col)
}

func (r *row) optionalInteger(col string) int64 {
	if r.text(col) == "" {
		return 0
	}
	return r.integer(col)
}

func (r *row) date(col string) time.Time {
	v := r.text(col)
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			r.fail(col, v, "date")
			return time.Time{}
		}
		return toDate(t)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return toDate(t)
		}
	}
	r.fail(col, v, "date")
	return time.Time{}
}

func normalizeHeader(h string) string {
	h = strings.ToLower(h)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' || r == '\t' || r == '\uFEFF' {
			return -1
		}
		return r
	}, h)
}

// normalizeNumericText undoes spreadsheet float formatting of values such as
// phone numbers, e.g. "9629317944.0" or "9.629317944e+09".
func normalizeNumericText(v string) string {
	if !strings.ContainsAny(v, ".eE") {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
