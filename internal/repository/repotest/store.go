// Package repotest provides an in-memory implementation of the repository interfaces for tests.
//
// Transactions are serialized and run against a copy of the committed state, which is swapped in
// only when the callback returns nil. That gives the same all-or-nothing and no-lost-update
// behaviour the postgres store gets from a transaction plus a row lock.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/repository"
)

type state struct {
	books         map[int32]domain.Book
	borrowings    map[int32]domain.Borrowing
	users         map[int32]domain.User
	notifications []domain.Notification
	nextID        int32
}

func (s *state) clone() *state {
	c := &state{
		books:         make(map[int32]domain.Book, len(s.books)),
		borrowings:    make(map[int32]domain.Borrowing, len(s.borrowings)),
		users:         make(map[int32]domain.User, len(s.users)),
		notifications: append([]domain.Notification(nil), s.notifications...),
		nextID:        s.nextID,
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.borrowings {
		if v.ActualReturn != nil {
			d := *v.ActualReturn
			v.ActualReturn = &d
		}
		c.borrowings[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *state) id() int32 {
	s.nextID++
	return s.nextID
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: &state{
		books:      map[int32]domain.Book{},
		borrowings: map[int32]domain.Borrowing{},
		users:      map[int32]domain.User{},
	}}
}

// AddUser seeds a user; the id is taken from u.
func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
}

// AddBook seeds a book and returns it with its assigned id.
func (s *Store) AddBook(b domain.Book) domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.state.id()
	s.state.books[b.ID] = b
	return b
}

// AddBorrowing seeds a borrowing as-is, bypassing inventory. It returns the assigned id.
func (s *Store) AddBorrowing(br domain.Borrowing) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	br.ID = s.state.id()
	br.Book, br.User = nil, nil
	s.state.borrowings[br.ID] = br
	return br.ID
}

// Inventory returns the committed inventory of a book, or -1 if it does not exist.
func (s *Store) Inventory(bookID int32) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.state.books[bookID]
	if !ok {
		return -1
	}
	return b.Inventory
}

// BorrowingCount returns the number of committed borrowings.
func (s *Store) BorrowingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.borrowings)
}

func (s *Store) WithinTx(ctx context.Context, name string, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, &unitOfWork{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type unitOfWork struct{ st *state }

func (u *unitOfWork) Books() repository.BookRepository           { return &books{st: u.st} }
func (u *unitOfWork) Borrowings() repository.BorrowingRepository { return &borrowings{st: u.st} }

// view runs fn against the committed state under the store lock.
func (s *Store) view(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Books returns a repository over committed state. Each call is its own transaction.
func (s *Store) Books() repository.BookRepository { return &lockedBooks{s} }

// Borrowings returns a repository over committed state. Each call is its own transaction.
func (s *Store) Borrowings() repository.BorrowingRepository { return &lockedBorrowings{s} }

func (s *Store) Users() repository.UserRepository { return &users{s} }

func (s *Store) Notifications() repository.NotificationRepository { return &notifications{s} }

var _ repository.TxManager = (*Store)(nil)

type books struct{ st *state }

func (r *books) Create(ctx context.Context, b *domain.Book) error {
	b.ID = r.st.id()
	r.st.books[b.ID] = *b
	return nil
}

func (r *books) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	b, ok := r.st.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *books) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *books) Update(ctx context.Context, b *domain.Book) error {
	if _, ok := r.st.books[b.ID]; !ok {
		return domain.ErrNotFound
	}
	r.st.books[b.ID] = *b
	return nil
}

func (r *books) AdjustInventory(ctx context.Context, id int32, delta int32) (int32, error) {
	b, ok := r.st.books[id]
	if !ok || b.Inventory+delta < 0 {
		return 0, domain.ErrBookUnavailable
	}
	b.Inventory += delta
	r.st.books[id] = b
	return b.Inventory, nil
}

func (r *books) Delete(ctx context.Context, id int32) error {
	if _, ok := r.st.books[id]; !ok {
		return domain.ErrNotFound
	}
	for _, br := range r.st.borrowings {
		if br.BookID == id {
			return domain.ErrBookInUse
		}
	}
	delete(r.st.books, id)
	return nil
}

func (r *books) List(ctx context.Context, limit, offset int32) ([]domain.Book, int32, error) {
	all := make([]domain.Book, 0, len(r.st.books))
	for _, b := range r.st.books {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int32(len(all))
	if offset >= total {
		return []domain.Book{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type borrowings struct{ st *state }

func (r *borrowings) detailed(br domain.Borrowing) *domain.Borrowing {
	if b, ok := r.st.books[br.BookID]; ok {
		br.Book = &b
	}
	if u, ok := r.st.users[br.UserID]; ok {
		br.User = &u
	}
	return &br
}

func (r *borrowings) Create(ctx context.Context, br *domain.Borrowing) error {
	_, bookOK := r.st.books[br.BookID]
	_, userOK := r.st.users[br.UserID]
	if !bookOK || !userOK {
		return domain.Invalidf("borrower %d or book %d is not registered", br.UserID, br.BookID)
	}
	br.ID = r.st.id()
	stored := *br
	stored.Book, stored.User = nil, nil
	r.st.borrowings[br.ID] = stored
	return nil
}

func (r *borrowings) GetByID(ctx context.Context, id int32) (*domain.Borrowing, error) {
	br, ok := r.st.borrowings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.detailed(br), nil
}

func (r *borrowings) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Borrowing, error) {
	br, ok := r.st.borrowings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &br, nil
}

func (r *borrowings) MarkReturned(ctx context.Context, br *domain.Borrowing) error {
	if br.ActualReturn == nil {
		return domain.Invalidf("actual return date is required")
	}
	stored, ok := r.st.borrowings[br.ID]
	if !ok || stored.ActualReturn != nil {
		return domain.ErrAlreadyReturned
	}
	d := *br.ActualReturn
	stored.ActualReturn = &d
	r.st.borrowings[br.ID] = stored
	return nil
}

func (r *borrowings) sorted() []domain.Borrowing {
	all := make([]domain.Borrowing, 0, len(r.st.borrowings))
	for _, br := range r.st.borrowings {
		all = append(all, br)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (r *borrowings) List(ctx context.Context, filter domain.BorrowingFilter) ([]domain.Borrowing, error) {
	out := []domain.Borrowing{}
	for _, br := range r.sorted() {
		if filter.UserID != nil && br.UserID != *filter.UserID {
			continue
		}
		if filter.IsActive != nil && br.IsActive() != *filter.IsActive {
			continue
		}
		out = append(out, *r.detailed(br))
	}
	return out, nil
}

func (r *borrowings) ListOverdue(ctx context.Context, today time.Time) ([]domain.OverdueBorrowing, error) {
	var out []domain.OverdueBorrowing
	for _, br := range r.sorted() {
		if !br.IsOverdue(today) {
			continue
		}
		d := r.detailed(br)
		o := domain.OverdueBorrowing{
			BorrowingID:    br.ID,
			UserID:         br.UserID,
			ExpectedReturn: br.ExpectedReturn,
		}
		if d.User != nil {
			o.UserEmail = d.User.Email
		}
		if d.Book != nil {
			o.BookTitle = d.Book.Title
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpectedReturn.Before(out[j].ExpectedReturn) })
	return out, nil
}

type lockedBooks struct{ s *Store }

func (r *lockedBooks) Create(ctx context.Context, b *domain.Book) error {
	return r.s.WithinTx(ctx, "book", func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Books().Create(ctx, b)
	})
}

func (r *lockedBooks) GetByID(ctx context.Context, id int32) (b *domain.Book, err error) {
	r.s.view(func(st *state) { b, err = (&books{st}).GetByID(ctx, id) })
	return
}

func (r *lockedBooks) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *lockedBooks) Update(ctx context.Context, b *domain.Book) error {
	return r.s.WithinTx(ctx, "book", func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Books().Update(ctx, b)
	})
}

func (r *lockedBooks) AdjustInventory(ctx context.Context, id int32, delta int32) (n int32, err error) {
	err = r.s.WithinTx(ctx, "book", func(ctx context.Context, uow repository.UnitOfWork) error {
		n, err = uow.Books().AdjustInventory(ctx, id, delta)
		return err
	})
	return
}

func (r *lockedBooks) Delete(ctx context.Context, id int32) error {
	return r.s.WithinTx(ctx, "book", func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Books().Delete(ctx, id)
	})
}

func (r *lockedBooks) List(ctx context.Context, limit, offset int32) (list []domain.Book, total int32, err error) {
	r.s.view(func(st *state) { list, total, err = (&books{st}).List(ctx, limit, offset) })
	return
}

type lockedBorrowings struct{ s *Store }

func (r *lockedBorrowings) Create(ctx context.Context, br *domain.Borrowing) error {
	return r.s.WithinTx(ctx, "borrowing", func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Borrowings().Create(ctx, br)
	})
}

func (r *lockedBorrowings) GetByID(ctx context.Context, id int32) (br *domain.Borrowing, err error) {
	r.s.view(func(st *state) { br, err = (&borrowings{st}).GetByID(ctx, id) })
	return
}

func (r *lockedBorrowings) GetByIDForUpdate(ctx context.Context, id int32) (br *domain.Borrowing, err error) {
	r.s.view(func(st *state) { br, err = (&borrowings{st}).GetByIDForUpdate(ctx, id) })
	return
}

func (r *lockedBorrowings) MarkReturned(ctx context.Context, br *domain.Borrowing) error {
	return r.s.WithinTx(ctx, "borrowing", func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Borrowings().MarkReturned(ctx, br)
	})
}

func (r *lockedBorrowings) List(ctx context.Context, filter domain.BorrowingFilter) (list []domain.Borrowing, err error) {
	r.s.view(func(st *state) { list, err = (&borrowings{st}).List(ctx, filter) })
	return
}

func (r *lockedBorrowings) ListOverdue(ctx context.Context, today time.Time) (list []domain.OverdueBorrowing, err error) {
	r.s.view(func(st *state) { list, err = (&borrowings{st}).ListOverdue(ctx, today) })
	return
}

type users struct{ s *Store }

func (r *users) GetByID(ctx context.Context, id int32) (u *domain.User, err error) {
	r.s.view(func(st *state) {
		found, ok := st.users[id]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		u = &found
	})
	return
}

func (r *users) UpdateName(ctx context.Context, u *domain.User) (err error) {
	r.s.view(func(st *state) {
		found, ok := st.users[u.ID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		found.FirstName, found.LastName = u.FirstName, u.LastName
		st.users[u.ID] = found
	})
	return
}

type notifications struct{ s *Store }

func (r *notifications) Create(ctx context.Context, n *domain.Notification) error {
	r.s.view(func(st *state) {
		n.ID = st.id()
		st.notifications = append(st.notifications, *n)
	})
	return nil
}

func (r *notifications) List(ctx context.Context, limit, offset int32) (list []domain.Notification, total int32, err error) {
	r.s.view(func(st *state) {
		total = int32(len(st.notifications))
		list = []domain.Notification{}
		for i := len(st.notifications) - 1 - int(offset); i >= 0 && len(list) < int(limit); i-- {
			list = append(list, st.notifications[i])
		}
	})
	return
}
