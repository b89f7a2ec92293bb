package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
	"library-rental-backend/internal/repository"
)

const (
	dialectPostgres  = "postgres"
	tableBorrowings  = "borrowings"
	colActualReturn  = "br.actual_return"
	colUserID        = "br.user_id"
	colExpected      = "br.expected_return"
	colBorrowingID   = "br.id"
	colBorrowingCols = `id, borrow_date, expected_return, actual_return, book_id, user_id`
)

type borrowingRepository struct {
	db DBTX
}

func NewBorrowingRepository(db DBTX) repository.BorrowingRepository {
	return &borrowingRepository{db: db}
}

// detailedSelect joins the book and the borrower so listings can be rendered without extra queries.
func detailedSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T(tableBorrowings).As("br")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I(colUserID)))).
		Select(
			colBorrowingID, "br.borrow_date", colExpected, colActualReturn, "br.book_id", colUserID,
			"b.title", "b.author", "b.cover", "b.inventory", goqu.L("(b.daily_fee * 100)::int"),
			"u.email", "u.first_name", "u.last_name", "u.is_staff",
		).
		Order(goqu.I(colBorrowingID).Asc()).
		Prepared(true)
}

func scanDetailed(row interface{ Scan(...any) error }) (*domain.Borrowing, error) {
	br := &domain.Borrowing{Book: &domain.Book{}, User: &domain.User{}}
	err := row.Scan(
		&br.ID, &br.BorrowDate, &br.ExpectedReturn, &br.ActualReturn, &br.BookID, &br.UserID,
		&br.Book.Title, &br.Book.Author, &br.Book.Cover, &br.Book.Inventory, &br.Book.DailyFeeCents,
		&br.User.Email, &br.User.FirstName, &br.User.LastName, &br.User.IsStaff,
	)
	if err != nil {
		return nil, err
	}
	br.Book.ID = br.BookID
	br.User.ID = br.UserID
	return br, nil
}

func (r *borrowingRepository) Create(ctx context.Context, br *domain.Borrowing) error {
	query := `INSERT INTO borrowings (borrow_date, expected_return, book_id, user_id)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	logger.DatabaseCall("INSERT", tableBorrowings, "bookID", br.BookID, "userID", br.UserID)
	err := r.db.QueryRowContext(ctx, query,
		br.BorrowDate.Format(domain.DateLayout), br.ExpectedReturn.Format(domain.DateLayout), br.BookID, br.UserID,
	).Scan(&br.ID)
	if isForeignKeyViolation(err) {
		err = domain.Invalidf("borrower %d or book %d is not registered", br.UserID, br.BookID)
	}
	logger.DatabaseResult("INSERT", 1, err, "borrowingID", br.ID)
	return err
}

func (r *borrowingRepository) GetByID(ctx context.Context, id int32) (*domain.Borrowing, error) {
	query, args, err := detailedSelect().Where(goqu.I(colBorrowingID).Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build borrowing query: %w", err)
	}
	br, err := scanDetailed(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return br, nil
}

func (r *borrowingRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Borrowing, error) {
	query := `SELECT ` + colBorrowingCols + ` FROM borrowings WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", tableBorrowings, "borrowingID", id)

	br := &domain.Borrowing{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&br.ID, &br.BorrowDate, &br.ExpectedReturn, &br.ActualReturn, &br.BookID, &br.UserID)
	if err != nil {
		err = notFound(err)
		logger.DatabaseResult("SELECT FOR UPDATE", 0, err, "borrowingID", id)
		return nil, err
	}
	logger.DatabaseResult("SELECT FOR UPDATE", 1, nil, "borrowingID", id)
	return br, nil
}

// MarkReturned writes actual_return only if it is still NULL; a concurrent return therefore
// surfaces as domain.ErrAlreadyReturned instead of overwriting the first one.
func (r *borrowingRepository) MarkReturned(ctx context.Context, br *domain.Borrowing) error {
	if br.ActualReturn == nil {
		return fmt.Errorf("mark returned: %w", domain.Invalidf("actual return date is required"))
	}
	query := `UPDATE borrowings SET actual_return = $1 WHERE id = $2 AND actual_return IS NULL`
	logger.DatabaseCall("UPDATE", tableBorrowings, "borrowingID", br.ID)

	res, err := r.db.ExecContext(ctx, query, br.ActualReturn.Format(domain.DateLayout), br.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "borrowingID", br.ID)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "borrowingID", br.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyReturned
	}
	return nil
}

func (r *borrowingRepository) List(ctx context.Context, filter domain.BorrowingFilter) ([]domain.Borrowing, error) {
	ds := detailedSelect()
	if filter.UserID != nil {
		ds = ds.Where(goqu.I(colUserID).Eq(*filter.UserID))
	}
	if filter.IsActive != nil {
		if *filter.IsActive {
			ds = ds.Where(goqu.I(colActualReturn).IsNull())
		} else {
			ds = ds.Where(goqu.I(colActualReturn).IsNotNull())
		}
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build borrowing list query: %w", err)
	}

	logger.DatabaseCall("SELECT", tableBorrowings, "query", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	borrowings := []domain.Borrowing{}
	for rows.Next() {
		br, err := scanDetailed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan borrowing: %w", err)
		}
		borrowings = append(borrowings, *br)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(borrowings)), nil)
	return borrowings, nil
}

func (r *borrowingRepository) ListOverdue(ctx context.Context, today time.Time) ([]domain.OverdueBorrowing, error) {
	query, args, err := goqu.Dialect(dialectPostgres).
		From(goqu.T(tableBorrowings).As("br")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I(colUserID)))).
		Select(colBorrowingID, colUserID, "u.email", "b.title", colExpected).
		Where(
			goqu.I(colExpected).Lt(today.Format(domain.DateLayout)),
			goqu.I(colActualReturn).IsNull(),
		).
		Order(goqu.I(colExpected).Asc(), goqu.I(colBorrowingID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build overdue query: %w", err)
	}

	logger.DatabaseCall("SELECT", tableBorrowings, "query", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var overdue []domain.OverdueBorrowing
	for rows.Next() {
		var o domain.OverdueBorrowing
		if err := rows.Scan(&o.BorrowingID, &o.UserID, &o.UserEmail, &o.BookTitle, &o.ExpectedReturn); err != nil {
			return nil, fmt.Errorf("scan overdue borrowing: %w", err)
		}
		overdue = append(overdue, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(overdue)), nil)
	return overdue, nil
}
