package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/wolox-training/training-service/training/internal/model"
)

var bookColumns = []string{"id", "genre", "author", "image", "title", "subtitle", "publisher", "year", "pages", "isbn", "user_id"}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"id": id})
}

func (r *repository) GetBookByIsbn(ctx context.Context, isbn string) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"isbn": isbn})
}

func (r *repository) getBook(ctx context.Context, pred sq.Eq) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(pred).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		return model.Book{}, mapErr(err)
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	q := qb.Select(bookColumns...).From(booksTableName)
	if filter.Year != "" {
		q = q.Where(sq.Expr("LOWER(year) = LOWER(?)", filter.Year))
	}
	if filter.Genre != "" {
		q = q.Where(sq.Expr("LOWER(genre) = LOWER(?)", filter.Genre))
	}
	query, args, err := q.OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

// SaveBook inserts a book without id and updates the row of a book with one.
// Updating a missing row gives errs.ErrNotFound.
func (r *repository) SaveBook(ctx context.Context, book model.Book) (model.Book, error) {
	values := []interface{}{book.Genre, book.Author, book.Image, book.Title, book.Subtitle,
		book.Publisher, book.Year, book.Pages, book.Isbn, book.UserID}

	var (
		query string
		args  []interface{}
		err   error
	)
	if book.ID == 0 {
		query, args, err = qb.Insert(booksTableName).
			Columns(bookColumns[1:]...).
			Values(values...).
			Suffix("RETURNING id").
			ToSql()
	} else {
		update := qb.Update(booksTableName)
		for i, col := range bookColumns[1:] {
			update = update.Set(col, values[i])
		}
		query, args, err = update.
			Where(sq.Eq{"id": book.ID}).
			Suffix("RETURNING id").
			ToSql()
	}
	if err != nil {
		return model.Book{}, err
	}
	if err := r.db.GetContext(ctx, &book.ID, query, args...); err != nil {
		r.log.Error("SaveBook", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return model.Book{}, mapErr(err)
	}
	return book, nil
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return affected(res)
}
