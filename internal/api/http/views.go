package http

import (
	"time"

	"library-rental-backend/internal/domain"
)

// One view per endpoint.

type BookView struct {
	ID         int32  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Cover      string `json:"cover"`
	Inventory  int32  `json:"inventory"`
	DailyFee   string `json:"daily_fee"`
	OutOfBooks bool   `json:"out_of_books"`
}

type BookSummaryView struct {
	ID       int32  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Cover    string `json:"cover"`
	DailyFee string `json:"daily_fee"`
}

type PageView[T any] struct {
	Count   int32 `json:"count"`
	Results []T   `json:"results"`
}

type BorrowingListView struct {
	ID             int32            `json:"id"`
	BorrowDate     string           `json:"borrow_date"`
	ExpectedReturn string           `json:"expected_return"`
	ActualReturn   *string          `json:"actual_return"`
	Book           *BookSummaryView `json:"book"`
	UserEmail      string           `json:"user_email"`
}

type BorrowingDetailView struct {
	ID             int32     `json:"id"`
	BorrowDate     string    `json:"borrow_date"`
	ExpectedReturn string    `json:"expected_return"`
	ActualReturn   *string   `json:"actual_return"`
	Book           *BookView `json:"book"`
	UserID         int32     `json:"user_id"`
}

type BorrowingCreateView struct {
	ID             int32   `json:"id"`
	BorrowDate     string  `json:"borrow_date"`
	ExpectedReturn string  `json:"expected_return"`
	ActualReturn   *string `json:"actual_return"`
	Book           int32   `json:"book"`
	User           int32   `json:"user"`
}

type ReturnView struct {
	Status string `json:"status"`
}

const returnConfirmation = "This borrowing is closed successfully"

type UserView struct {
	ID        int32  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

type NotificationView struct {
	ID          int32  `json:"id"`
	Channel     string `json:"channel"`
	Destination string `json:"destination"`
	Message     string `json:"message"`
	Delivered   bool   `json:"delivered"`
	Error       string `json:"error,omitempty"`
	CreatedOn   string `json:"created_on"`
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func bookView(b *domain.Book) *BookView {
	if b == nil {
		return nil
	}
	return &BookView{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Cover:      string(b.Cover),
		Inventory:  b.Inventory,
		DailyFee:   domain.FormatFee(b.DailyFeeCents),
		OutOfBooks: b.OutOfBooks(),
	}
}

func bookSummaryView(b *domain.Book) *BookSummaryView {
	if b == nil {
		return nil
	}
	return &BookSummaryView{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		Cover:    string(b.Cover),
		DailyFee: domain.FormatFee(b.DailyFeeCents),
	}
}

func bookListView(books []domain.Book, total int32) PageView[BookView] {
	out := make([]BookView, 0, len(books))
	for i := range books {
		out = append(out, *bookView(&books[i]))
	}
	return PageView[BookView]{Count: total, Results: out}
}

func borrowingListView(list []domain.Borrowing) []BorrowingListView {
	out := make([]BorrowingListView, 0, len(list))
	for i := range list {
		br := &list[i]
		v := BorrowingListView{
			ID:             br.ID,
			BorrowDate:     formatDate(br.BorrowDate),
			ExpectedReturn: formatDate(br.ExpectedReturn),
			ActualReturn:   formatOptionalDate(br.ActualReturn),
			Book:           bookSummaryView(br.Book),
		}
		if br.User != nil {
			v.UserEmail = br.User.Email
		}
		out = append(out, v)
	}
	return out
}

func borrowingDetailView(br *domain.Borrowing) BorrowingDetailView {
	return BorrowingDetailView{
		ID:             br.ID,
		BorrowDate:     formatDate(br.BorrowDate),
		ExpectedReturn: formatDate(br.ExpectedReturn),
		ActualReturn:   formatOptionalDate(br.ActualReturn),
		Book:           bookView(br.Book),
		UserID:         br.UserID,
	}
}

func borrowingCreateView(br *domain.Borrowing) BorrowingCreateView {
	return BorrowingCreateView{
		ID:             br.ID,
		BorrowDate:     formatDate(br.BorrowDate),
		ExpectedReturn: formatDate(br.ExpectedReturn),
		ActualReturn:   formatOptionalDate(br.ActualReturn),
		Book:           br.BookID,
		User:           br.UserID,
	}
}

func userView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}

func notificationListView(notes []domain.Notification, total int32) PageView[NotificationView] {
	out := make([]NotificationView, 0, len(notes))
	for _, n := range notes {
		out = append(out, NotificationView{
			ID:          n.ID,
			Channel:     string(n.Channel),
			Destination: n.Destination,
			Message:     n.Message,
			Delivered:   n.Delivered,
			Error:       n.Error,
			CreatedOn:   n.CreatedOn.UTC().Format(time.RFC3339),
		})
	}
	return PageView[NotificationView]{Count: total, Results: out}
}
