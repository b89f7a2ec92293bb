package domain

import (
	"strings"
	"unicode/utf8"
)

type BookCover string

const (
	BookCoverHard BookCover = "Hard"
	BookCoverSoft BookCover = "Soft"
)

// Valid reports whether c is one of the supported cover types.
func (c BookCover) Valid() bool {
	return c == BookCoverHard || c == BookCoverSoft
}

const (
	// characters, matching VARCHAR(255)
	maxBookTextLength = 255
	// daily_fee is NUMERIC(5,2)
	MaxDailyFeeCents int32 = 99999
)

type Book struct {
	ID            int32     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Cover         BookCover `json:"cover"`
	Inventory     int32     `json:"inventory"`
	DailyFeeCents int32     `json:"daily_fee_cents"`
}

// OutOfBooks is true when no copy is left to lend.
func (b *Book) OutOfBooks() bool {
	return b.Inventory == 0
}

// Validate checks the invariants an administrator must respect when creating or editing a book.
func (b *Book) Validate() error {
	title := strings.TrimSpace(b.Title)
	author := strings.TrimSpace(b.Author)
	switch {
	case title == "":
		return invalidf("title is required")
	case utf8.RuneCountInString(title) > maxBookTextLength:
		return invalidf("title must be at most %d characters", maxBookTextLength)
	case author == "":
		return invalidf("author is required")
	case utf8.RuneCountInString(author) > maxBookTextLength:
		return invalidf("author must be at most %d characters", maxBookTextLength)
	case !b.Cover.Valid():
		return invalidf("cover must be %q or %q", BookCoverHard, BookCoverSoft)
	case b.Inventory < 0:
		return invalidf("inventory cannot be negative")
	case b.DailyFeeCents < 0 || b.DailyFeeCents > MaxDailyFeeCents:
		return invalidf("daily fee must be between 0.00 and 999.99")
	}
	b.Title = title
	b.Author = author
	return nil
}
