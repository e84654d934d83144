package openlibrary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/wolox-training/training-service/pkg/circuit_breaker"
	"github.com/wolox-training/training-service/pkg/validate"
	"github.com/wolox-training/training-service/training/internal/errs"
	"github.com/wolox-training/training-service/training/internal/model"
)

type BookSaver interface {
	SaveBook(ctx context.Context, book model.Book) (model.Book, error)
}

// Client looks books up in the OpenLibrary books API.
type Client struct {
	log      *zap.Logger
	client   *http.Client
	baseURL  string
	cb       circuit_breaker.CircuitBreaker
	saver    BookSaver
	validate *validator.Validate
}

func NewClient(baseURL string, client *http.Client, cb circuit_breaker.CircuitBreaker, saver BookSaver, log *zap.Logger) *Client {
	return &Client{
		log:      log.Named("openlibrary"),
		client:   client,
		baseURL:  baseURL,
		cb:       cb,
		saver:    saver,
		validate: validate.New(),
	}
}

// FetchMetadata returns the metadata known for isbn. The bool is false when
// the provider has no record of it.
func (c *Client) FetchMetadata(ctx context.Context, isbn string) (model.BookMetadata, bool, error) {
	body, err := c.get(ctx, isbn)
	if err != nil {
		return model.BookMetadata{}, false, err
	}
	meta, ok, err := parseMetadata(isbn, body)
	if err != nil {
		c.log.Warn("parse metadata", zap.String("isbn", isbn), zap.Error(err))
		return model.BookMetadata{}, false, err
	}
	return meta, ok, nil
}

// FindAndPersist fetches the metadata of isbn and saves it as a new book.
func (c *Client) FindAndPersist(ctx context.Context, isbn string) (model.Book, bool, error) {
	meta, ok, err := c.FetchMetadata(ctx, isbn)
	if err != nil || !ok {
		return model.Book{}, false, err
	}

	book := meta.Book()
	if fields := validate.Fields(c.validate.Struct(book)); len(fields) > 0 {
		return model.Book{}, false, errs.NewValidationError(fields...)
	}
	saved, err := c.saver.SaveBook(ctx, book)
	if err != nil {
		return model.Book{}, false, errors.Wrap(err, "save book")
	}
	c.log.Info("book imported", zap.String("isbn", isbn), zap.Int64("id", saved.ID))
	return saved, true, nil
}

// maxBodySize caps the provider response; a larger body is unparsable.
const maxBodySize = 1 << 20

func (c *Client) get(ctx context.Context, isbn string) ([]byte, error) {
	u := c.baseURL + fmt.Sprintf("?bibkeys=ISBN:%s&format=json&jscmd=data", url.QueryEscape(isbn))
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "GET %s", u)
	}

	var (
		body      []byte
		cancelled error
	)
	err := c.cb.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			// the caller gave up, the provider did not fail
			if ctxErr := ctx.Err(); ctxErr != nil {
				cancelled = ctxErr
				return nil
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return errors.Errorf("unexpected status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
		if err != nil && ctx.Err() != nil {
			cancelled = ctx.Err()
			return nil
		}
		return err
	})
	if cancelled != nil {
		return nil, errors.Wrapf(cancelled, "GET %s", u)
	}
	if err != nil {
		c.log.Error("openlibrary request", zap.String("url", u), zap.Error(err))
		return nil, errors.Wrapf(errs.ErrTransport, "GET %s: %v", u, err)
	}
	if len(body) > maxBodySize {
		return nil, errors.Wrapf(errs.ErrFormat, "response larger than %d bytes", maxBodySize)
	}
	return body, nil
}
