package domain

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type Borrowing struct {
	ID             int32      `json:"id"`
	BorrowDate     time.Time  `json:"borrow_date"`
	ExpectedReturn time.Time  `json:"expected_return"`
	ActualReturn   *time.Time `json:"actual_return,omitempty"`
	BookID         int32      `json:"book_id"`
	UserID         int32      `json:"user_id"`

	// Populated by list/retrieve queries.
	Book *Book `json:"book,omitempty"`
	User *User `json:"user,omitempty"`
}

// IsActive reports whether the book has not been returned yet.
func (b *Borrowing) IsActive() bool {
	return b.ActualReturn == nil
}

// IsOverdue reports whether the borrowing is still open after its expected return date.
func (b *Borrowing) IsOverdue(today time.Time) bool {
	return b.IsActive() && b.ExpectedReturn.Before(TruncateToDate(today))
}

// BorrowingFilter narrows a borrowings listing. Nil fields apply no restriction.
type BorrowingFilter struct {
	IsActive *bool
	UserID   *int32
}

// OverdueBorrowing is a past-due, unreturned borrowing with the details a reminder needs.
type OverdueBorrowing struct {
	BorrowingID    int32
	UserID         int32
	UserEmail      string
	BookTitle      string
	ExpectedReturn time.Time
}

// TruncateToDate drops the clock part of t, keeping its calendar date in UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalidf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
