package http

import (
	"net/http"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/service"
)

type BookHandler struct {
	books service.BookService
}

func NewBookHandler(books service.BookService) *BookHandler {
	return &BookHandler{books: books}
}

type bookRequest struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Cover     string `json:"cover"`
	Inventory *int32 `json:"inventory"`
	DailyFee  string `json:"daily_fee"`
}

func (req bookRequest) toDomain() (*domain.Book, error) {
	if req.Inventory == nil {
		return nil, domain.Invalidf("inventory is required")
	}
	fee, err := domain.ParseFee(req.DailyFee)
	if err != nil {
		return nil, err
	}
	return &domain.Book{
		Title:         req.Title,
		Author:        req.Author,
		Cover:         domain.BookCover(req.Cover),
		Inventory:     *req.Inventory,
		DailyFeeCents: fee,
	}, nil
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	books, total, err := h.books.ListBooks(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookListView(books, total))
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	book, err := h.books.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookView(book))
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	book, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.books.CreateBook(r.Context(), book); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookView(book))
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req bookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	book, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	book.ID = id
	if err := h.books.UpdateBook(r.Context(), book); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookView(book))
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.books.DeleteBook(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
