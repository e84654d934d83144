package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wolox-training/training-service/training/internal/model"
)

var userColumns = []string{"id", "username", "name", "birthdate", "password_hash"}

func (r *repository) GetUser(ctx context.Context, id int64) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"id": id})
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getUser(ctx, sq.Eq{"username": username})
}

func (r *repository) getUser(ctx context.Context, pred sq.Eq) (model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return model.User{}, mapErr(err)
	}

	books, err := r.ownedBooks(ctx, r.db, sq.Eq{"user_id": user.ID})
	if err != nil {
		return model.User{}, err
	}
	return user.WithBooks(books), nil
}

func (r *repository) ListUsers(ctx context.Context) ([]model.User, error) {
	query, args, err := qb.Select(userColumns...).
		From(usersTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}

	books, err := r.ownedBooks(ctx, r.db, sq.NotEq{"user_id": nil})
	if err != nil {
		return nil, err
	}
	byOwner := make(map[int64][]model.Book, len(users))
	for _, b := range books {
		byOwner[*b.UserID] = append(byOwner[*b.UserID], b)
	}

	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.WithBooks(byOwner[u.ID]))
	}
	return out, nil
}

// SaveUser inserts or updates the user row and makes the books table reflect the
// user's book set, all in one transaction.
func (r *repository) SaveUser(ctx context.Context, user model.User) (model.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if user.ID, err = r.saveUserRow(ctx, tx, user); err != nil {
		return model.User{}, err
	}

	books := user.Books()
	ids := make([]int64, 0, len(books))
	for i := range books {
		ids = append(ids, books[i].ID)
		books[i].UserID = &user.ID
	}

	release := qb.Update(booksTableName).
		Set("user_id", nil).
		Where(sq.Eq{"user_id": user.ID}).
		Where(sq.NotEq{"id": ids})
	if err := r.exec(ctx, tx, release); err != nil {
		return model.User{}, errors.Wrap(err, "release books")
	}
	if len(ids) > 0 {
		own := qb.Update(booksTableName).
			Set("user_id", user.ID).
			Where(sq.Eq{"id": ids})
		if err := r.exec(ctx, tx, own); err != nil {
			return model.User{}, errors.Wrap(err, "own books")
		}
	}

	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return user.WithBooks(books), nil
}

func (r *repository) saveUserRow(ctx context.Context, tx *sqlx.Tx, user model.User) (int64, error) {
	values := []interface{}{user.Username, user.Name, user.Birthdate, user.PasswordHash}

	var (
		query string
		args  []interface{}
		err   error
	)
	if user.ID == 0 {
		query, args, err = qb.Insert(usersTableName).
			Columns(userColumns[1:]...).
			Values(values...).
			Suffix("RETURNING id").
			ToSql()
	} else {
		update := qb.Update(usersTableName)
		for i, col := range userColumns[1:] {
			update = update.Set(col, values[i])
		}
		query, args, err = update.
			Where(sq.Eq{"id": user.ID}).
			Suffix("RETURNING id").
			ToSql()
	}
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.GetContext(ctx, &id, query, args...); err != nil {
		r.log.Error("SaveUser", zap.String("q", query), zap.Error(err))
		return 0, mapErr(err)
	}
	return id, nil
}

func (r *repository) DeleteUser(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(usersTableName).
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

func (r *repository) ownedBooks(ctx context.Context, q sqlx.QueryerContext, pred sq.Sqlizer) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(pred).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := sqlx.SelectContext(ctx, q, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) exec(ctx context.Context, tx *sqlx.Tx, b sq.UpdateBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
