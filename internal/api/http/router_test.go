package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-rental-backend/internal/config"
	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/repository/repotest"
	"library-rental-backend/internal/security"
	"library-rental-backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	store  *repotest.Store
	router http.Handler
	tokens map[string]string
}

func newHarness(t *testing.T, limiter *RateLimiter) *harness {
	t.Helper()
	store := repotest.NewStore()
	store.AddUser(domain.User{ID: 1, Email: "alice@example.com", FirstName: "Alice"})
	store.AddUser(domain.User{ID: 2, Email: "bob@example.com"})
	store.AddUser(domain.User{ID: 3, Email: "staff@example.com", IsStaff: true})

	tm := security.NewTokenManager(testSecret, time.Hour)
	tokens := map[string]string{}
	for name, u := range map[string]struct {
		id    int32
		staff bool
	}{"alice": {1, false}, "bob": {2, false}, "staff": {3, true}} {
		tok, err := tm.GenerateAccessToken(u.id, name+"@example.com", u.staff)
		require.NoError(t, err)
		tokens[name] = tok
	}

	router := NewRouter(Dependencies{
		Tokens:        tm,
		Books:         service.NewBookService(store.Books()),
		Borrowings:    service.NewBorrowingService(store, store.Borrowings(), service.WithClock(func() time.Time { return testNow })),
		Users:         service.NewUserService(store.Users()),
		Notifications: service.NewNotificationService(store.Notifications()),
		Limiter:       limiter,
	})
	return &harness{t: t, store: store, router: router, tokens: tokens}
}

// do sends a request as user ("" for anonymous) and decodes a JSON response into out when given.
func (h *harness) do(method, path, user, body string, out any) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+h.tokens[user])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func (h *harness) addBook(inventory int32) int32 {
	return h.store.AddBook(domain.Book{
		Title: "Dune", Author: "Frank Herbert", Cover: domain.BookCoverHard,
		Inventory: inventory, DailyFeeCents: 150,
	}).ID
}

func TestBooksEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	id := h.addBook(2)

	t.Run("Catalog is public", func(t *testing.T) {
		var page PageView[BookView]
		w := h.do(http.MethodGet, "/api/v1/books", "", "", &page)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(1), page.Count)
		assert.Equal(t, "1.50", page.Results[0].DailyFee)
		assert.False(t, page.Results[0].OutOfBooks)

		var book BookView
		w = h.do(http.MethodGet, "/api/v1/books/"+itoa(id), "", "", &book)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Dune", book.Title)
	})

	t.Run("Administration is staff only", func(t *testing.T) {
		body := `{"title":"Emma","author":"Jane Austen","cover":"Soft","inventory":0,"daily_fee":"0.99"}`

		w := h.do(http.MethodPost, "/api/v1/books", "", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = h.do(http.MethodPost, "/api/v1/books", "alice", body, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		var created BookView
		w = h.do(http.MethodPost, "/api/v1/books", "staff", body, &created)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Emma", created.Title)
		assert.Equal(t, "0.99", created.DailyFee)
		assert.True(t, created.OutOfBooks)

		var updated BookView
		w = h.do(http.MethodPut, "/api/v1/books/"+itoa(created.ID), "staff",
			`{"title":"Emma","author":"Jane Austen","cover":"Hard","inventory":4,"daily_fee":"1"}`, &updated)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(4), updated.Inventory)
		assert.Equal(t, "1.00", updated.DailyFee)

		w = h.do(http.MethodDelete, "/api/v1/books/"+itoa(created.ID), "staff", "", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Validation", func(t *testing.T) {
		var resp errorResponse
		w := h.do(http.MethodPost, "/api/v1/books", "staff",
			`{"title":"X","author":"Y","cover":"Hard","inventory":1,"daily_fee":"1.999"}`, &resp)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Error, "invalid input")

		w = h.do(http.MethodPost, "/api/v1/books", "staff", `{"title":"X","author":"Y","cover":"Hard","daily_fee":"1"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = h.do(http.MethodPost, "/api/v1/books", "staff", `{"title":"X","bogus":1}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = h.do(http.MethodPut, "/api/v1/books/"+itoa(id), "staff",
			`{"title":"Dune","author":"Frank Herbert","cover":"Hard","inventory":-1,"daily_fee":"1"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing and referenced books", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/v1/books/999", "", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = h.do(http.MethodGet, "/api/v1/books/abc", "", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = h.do(http.MethodPost, "/api/v1/borrowings", "alice", `{"book":`+itoa(id)+`,"expected_return":"2026-10-20"}`, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp errorResponse
		w = h.do(http.MethodDelete, "/api/v1/books/"+itoa(id), "staff", "", &resp)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, domain.ErrBookInUse.Error(), resp.Error)
	})
}

func TestBorrowingLifecycleEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	bookID := h.addBook(1)

	var created BorrowingCreateView
	w := h.do(http.MethodPost, "/api/v1/borrowings", "alice",
		`{"book":`+itoa(bookID)+`,"expected_return":"2026-10-24"}`, &created)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "2026-10-17", created.BorrowDate)
	assert.Equal(t, "2026-10-24", created.ExpectedReturn)
	assert.Nil(t, created.ActualReturn)
	assert.Equal(t, bookID, created.Book)
	assert.Equal(t, int32(1), created.User)
	assert.Equal(t, int32(0), h.store.Inventory(bookID))

	var resp errorResponse
	w = h.do(http.MethodPost, "/api/v1/borrowings", "bob",
		`{"book":`+itoa(bookID)+`,"expected_return":"2026-10-24"}`, &resp)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.ErrBookUnavailable.Error(), resp.Error)

	path := "/api/v1/borrowings/" + itoa(created.ID)

	w = h.do(http.MethodGet, path, "bob", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var detail BorrowingDetailView
	w = h.do(http.MethodGet, path, "alice", "", &detail)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), detail.UserID)
	require.NotNil(t, detail.Book)
	assert.True(t, detail.Book.OutOfBooks)

	w = h.do(http.MethodPost, path+"/return", "bob", "", &resp)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.ErrNotFound.Error(), resp.Error)

	w = h.do(http.MethodPost, path+"/return", "staff", "", &resp)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, domain.ErrNotBorrower.Error(), resp.Error)
	assert.Equal(t, int32(0), h.store.Inventory(bookID))

	var status ReturnView
	w = h.do(http.MethodPost, path+"/return", "alice", "", &status)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "This borrowing is closed successfully", status.Status)
	assert.Equal(t, int32(1), h.store.Inventory(bookID))

	w = h.do(http.MethodPost, path+"/return", "alice", "", &resp)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.ErrAlreadyReturned.Error(), resp.Error)
	assert.Equal(t, int32(1), h.store.Inventory(bookID))

	w = h.do(http.MethodPost, "/api/v1/borrowings/999/return", "alice", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBorrowingCreateValidation(t *testing.T) {
	h := newHarness(t, nil)
	bookID := h.addBook(1)

	cases := map[string]string{
		"bad date":     `{"book":` + itoa(bookID) + `,"expected_return":"24/10/2026"}`,
		"missing date": `{"book":` + itoa(bookID) + `}`,
		"missing book": `{"expected_return":"2026-10-24"}`,
		"unknown book": `{"book":999,"expected_return":"2026-10-24"}`,
		"empty body":   ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := h.do(http.MethodPost, "/api/v1/borrowings", "alice", body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Equal(t, int32(1), h.store.Inventory(bookID))
}

func TestBorrowingListEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	bookID := h.addBook(5)
	var ids []int32
	for _, user := range []string{"alice", "bob", "bob"} {
		var created BorrowingCreateView
		w := h.do(http.MethodPost, "/api/v1/borrowings", user, `{"book":`+itoa(bookID)+`,"expected_return":"2026-10-24"}`, &created)
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, created.ID)
	}
	w := h.do(http.MethodPost, "/api/v1/borrowings/"+itoa(ids[1])+"/return", "bob", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []BorrowingListView

	w = h.do(http.MethodGet, "/api/v1/borrowings", "alice", "", &list)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list, 1)
	assert.Equal(t, "alice@example.com", list[0].UserEmail)
	assert.Equal(t, "Dune", list[0].Book.Title)

	list = nil
	w = h.do(http.MethodGet, "/api/v1/borrowings?user_id=2", "alice", "", &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list, 1)

	list = nil
	w = h.do(http.MethodGet, "/api/v1/borrowings", "staff", "", &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list, 3)

	list = nil
	w = h.do(http.MethodGet, "/api/v1/borrowings?user_id=2&is_active=false", "staff", "", &list)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ActualReturn)
	assert.Equal(t, "2026-10-17", *list[0].ActualReturn)

	list = nil
	w = h.do(http.MethodGet, "/api/v1/borrowings?is_active=true", "staff", "", &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list, 2)

	w = h.do(http.MethodGet, "/api/v1/borrowings?is_active=yes", "staff", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/api/v1/borrowings?user_id=two", "staff", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/api/v1/borrowings", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsersMeEndpoint(t *testing.T) {
	h := newHarness(t, nil)

	var me UserView
	w := h.do(http.MethodGet, "/api/v1/users/me", "alice", "", &me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.False(t, me.IsStaff)

	w = h.do(http.MethodPatch, "/api/v1/users/me", "alice", `{"last_name":"Liddell"}`, &me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", me.FirstName)
	assert.Equal(t, "Liddell", me.LastName)
}

func TestNotificationsEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	sink := service.NewRecordingSink(service.LogSink{}, domain.NotificationChannelLog, h.store.Notifications())
	require.NoError(t, sink.Send(context.Background(), "", "No overdue borrowings today"))

	w := h.do(http.MethodGet, "/api/v1/notifications", "alice", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var page PageView[NotificationView]
	w = h.do(http.MethodGet, "/api/v1/notifications?limit=10", "staff", "", &page)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), page.Count)
	assert.Equal(t, "No overdue borrowings today", page.Results[0].Message)
	assert.True(t, page.Results[0].Delivered)

	w = h.do(http.MethodGet, "/api/v1/notifications?limit=x", "staff", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFailures(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a bad token on a public route is still rejected
	req = httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	w = h.do(http.MethodGet, "/nope", "alice", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{RequestsPerMinute: 1, Burst: 2})
	defer limiter.Stop()
	h := newHarness(t, limiter)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/users/me", "alice", "", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/users/me", "alice", "", nil).Code)
	w := h.do(http.MethodGet, "/api/v1/users/me", "alice", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// separate bucket per identity
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/users/me", "bob", "", nil).Code)
	assert.Equal(t, 2, limiter.Len())

	limiter.cleanup(time.Now().Add(time.Hour))
	assert.Equal(t, 0, limiter.Len())
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrBookUnavailable, http.StatusConflict},
		{domain.ErrAlreadyReturned, http.StatusConflict},
		{domain.ErrBookInUse, http.StatusConflict},
		{domain.ErrNotBorrower, http.StatusForbidden},
		{domain.Invalidf("x"), http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, statusFor(c.err), c.err.Error())
	}
	assert.Equal(t, "internal server error", errorMessage(context.DeadlineExceeded))
}

func itoa(v int32) string {
	return strconv.Itoa(int(v))
}
