package http

import (
	"net/http"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/service"
)

type BorrowingHandler struct {
	borrowings service.BorrowingService
}

func NewBorrowingHandler(borrowings service.BorrowingService) *BorrowingHandler {
	return &BorrowingHandler{borrowings: borrowings}
}

type createBorrowingRequest struct {
	Book           int32  `json:"book"`
	ExpectedReturn string `json:"expected_return"`
}

// parseBorrowingFilter reads user_id and is_active. user_id is passed through for everyone; the
// service ignores it for non-staff requesters.
func parseBorrowingFilter(r *http.Request) (domain.BorrowingFilter, error) {
	var filter domain.BorrowingFilter
	q := r.URL.Query()

	if raw := q.Get("user_id"); raw != "" {
		id, err := queryInt32(r, "user_id", 0)
		if err != nil {
			return filter, err
		}
		filter.UserID = &id
	}

	switch raw := q.Get("is_active"); raw {
	case "":
	case "true":
		active := true
		filter.IsActive = &active
	case "false":
		active := false
		filter.IsActive = &active
	default:
		return filter, domain.Invalidf("is_active must be \"true\" or \"false\", got %q", raw)
	}
	return filter, nil
}

func (h *BorrowingHandler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	filter, err := parseBorrowingFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.borrowings.List(r.Context(), req, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowingListView(list))
}

func (h *BorrowingHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	br, err := h.borrowings.Retrieve(r.Context(), req, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowingDetailView(br))
}

func (h *BorrowingHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var body createBorrowingRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Book <= 0 {
		writeError(w, r, domain.Invalidf("book is required"))
		return
	}
	expected, err := domain.ParseDate(body.ExpectedReturn)
	if err != nil {
		writeError(w, r, err)
		return
	}

	br, err := h.borrowings.Create(r.Context(), req, body.Book, expected)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, borrowingCreateView(br))
}

// Return takes no body and answers with a status confirmation.
func (h *BorrowingHandler) Return(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.borrowings.Return(r.Context(), req, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReturnView{Status: returnConfirmation})
}
