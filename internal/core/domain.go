package core

import (
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// QuickEntryDescription is stored when a quick expense carries no description.
const QuickEntryDescription = "Quick entry"

type (
	// Date is a calendar day. The time component is always midnight UTC.
	Date struct {
		time.Time
	}

	Expense struct {
		Amount      decimal.Decimal
		Description string
		Date        Date
	}

	// Account is the unit of budget state, personal or shared among
	// several sender identities. The ID is the identity that seeded it.
	Account struct {
		ID             string
		Members        []string
		Allocation     decimal.Decimal
		Balance        decimal.Decimal
		Topup          decimal.Decimal
		LastTopup      Date
		Expenses       []Expense
		PendingInvites []string
		Version        int64
		CreatedAt      time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrBusy            = errors.New("account busy")
	ErrConflict        = errors.New("version conflict")
)

var identityPattern = regexp.MustCompile(`^\+[0-9]{7,15}$`)

// ValidIdentity reports whether s is a phone-number-style sender identity.
func ValidIdentity(s string) bool {
	return identityPattern.MatchString(s)
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses the persisted "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// SameMonth reports whether both dates fall in the same month of the same
// year. A January top-up must not suppress the following January's rollover.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

// AddDays returns the date n days after d. Negative n goes backwards.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// OnOrAfter reports whether d is the same day as o or later.
func (d Date) OnOrAfter(o Date) bool {
	return !d.Time.Before(o.Time)
}

// NewAccount seeds a personal account for the given identity.
func NewAccount(id, seedMember string, createdAt time.Time) *Account {
	return &Account{
		ID:         id,
		Members:    []string{seedMember},
		Allocation: decimal.Zero,
		Balance:    decimal.Zero,
		Topup:      decimal.Zero,
		CreatedAt:  createdAt,
	}
}

func (a *Account) IsMember(identity string) bool {
	return contains(a.Members, identity)
}

// AddMember appends identity to the member set. Idempotent.
func (a *Account) AddMember(identity string) {
	if !contains(a.Members, identity) {
		a.Members = append(a.Members, identity)
	}
}

// RemoveMember drops identity from the member set if present.
func (a *Account) RemoveMember(identity string) {
	a.Members = remove(a.Members, identity)
}

func (a *Account) HasInvite(identity string) bool {
	return contains(a.PendingInvites, identity)
}

// AddInvite records a pending invite. Idempotent.
func (a *Account) AddInvite(identity string) {
	if !contains(a.PendingInvites, identity) {
		a.PendingInvites = append(a.PendingInvites, identity)
	}
}

func (a *Account) RemoveInvite(identity string) {
	a.PendingInvites = remove(a.PendingInvites, identity)
}

// Reset returns the account to its initial empty state with seedMember as
// the sole member. Shared members and pending invites are dropped.
func (a *Account) Reset(seedMember string) {
	a.Members = []string{seedMember}
	a.Allocation = decimal.Zero
	a.Balance = decimal.Zero
	a.Topup = decimal.Zero
	a.LastTopup = Date{}
	a.Expenses = nil
	a.PendingInvites = nil
}

// ExpensesSince returns entries dated on or after cutoff, oldest first.
func (a *Account) ExpensesSince(cutoff Date) []Expense {
	var out []Expense
	for _, e := range a.Expenses {
		if e.Date.OnOrAfter(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy. Stores hand out clones so callers can mutate
// freely before saving.
func (a *Account) Clone() *Account {
	c := *a
	c.Members = append([]string(nil), a.Members...)
	c.PendingInvites = append([]string(nil), a.PendingInvites...)
	c.Expenses = append([]Expense(nil), a.Expenses...)
	return &c
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
