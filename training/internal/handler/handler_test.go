package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wolox-training/training-service/training/internal/errs"
	"github.com/wolox-training/training-service/training/internal/handler"
	"github.com/wolox-training/training-service/training/internal/model"

	service_mocks "github.com/wolox-training/training-service/training/internal/handler/mocks"
)

func ptr[T any](v T) *T { return &v }

const bookJSON = `{"id":0,"genre":"fiction","author":"Jane Doe","image":"cover.png","title":"A Title",` +
	`"subtitle":"","publisher":"Acme","year":"2001","pages":120,"isbn":"111"}`

var (
	bookReq = model.BookRequest{
		Genre:     ptr("fiction"),
		Author:    ptr("Jane Doe"),
		Image:     ptr("cover.png"),
		Title:     ptr("A Title"),
		Subtitle:  ptr(""),
		Publisher: ptr("Acme"),
		Year:      ptr("2001"),
		Pages:     ptr(120),
		Isbn:      ptr("111"),
	}
	storedBook = model.Book{
		ID:        1,
		Genre:     "fiction",
		Author:    "Jane Doe",
		Image:     "cover.png",
		Title:     "A Title",
		Publisher: "Acme",
		Year:      "2001",
		Pages:     120,
		Isbn:      "111",
	}
	storedBookJSON = `{"id":1,"genre":"fiction","author":"Jane Doe","image":"cover.png","title":"A Title",` +
		`"subtitle":"","publisher":"Acme","year":"2001","pages":120,"isbn":"111"}`

	storedUser = model.User{
		ID:        3,
		Username:  "jdoe",
		Name:      "Jane",
		Birthdate: model.NewDate(1990, 1, 2),
	}.WithBooks(nil)
	storedUserJSON = `{"id":3,"username":"jdoe","name":"Jane","birthdate":"1990-01-02","books":[]}`
)

type mockBehavior func(r *service_mocks.MockLibraryService)

type testCase struct {
	name         string
	method       string
	target       string
	body         string
	mockBehavior mockBehavior
	expectedCode int
	expectedBody string
	anyBody      bool
}

func run(t *testing.T, tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLibraryService(c)
			if tt.mockBehavior != nil {
				tt.mockBehavior(svc)
			}
			e := handler.New(svc, zap.NewNop()).NewRouter()

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			r := httptest.NewRequest(tt.method, tt.target, body)
			r.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			got := strings.Trim(w.Body.String(), "\n")
			if tt.anyBody {
				return
			}
			if tt.expectedBody == "" {
				require.Empty(t, got)
				return
			}
			require.JSONEq(t, tt.expectedBody, got)
		})
	}
}

func TestHandler_Books(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name:   "create",
			method: http.MethodPost,
			target: "/api/books",
			body:   bookJSON,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().CreateBook(gomock.Any(), bookReq).Return(storedBook, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: storedBookJSON,
		},
		{
			name:   "create. null field",
			method: http.MethodPost,
			target: "/api/books",
			body:   `{"author":null,"pages":0}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().CreateBook(gomock.Any(), model.BookRequest{Pages: ptr(0)}).
					Return(model.Book{}, errs.NewValidationError("author", "pages"))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"fields":["author","pages"],"message":"validation failed"}`,
		},
		{
			name:         "create. malformed body",
			method:       http.MethodPost,
			target:       "/api/books",
			body:         `{"title":`,
			expectedCode: http.StatusBadRequest,
			anyBody:      true,
		},
		{
			name:   "list filtered",
			method: http.MethodGet,
			target: "/api/books?year=2001&genre=Fiction",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().ListBooks(gomock.Any(), model.BookFilter{Year: "2001", Genre: "Fiction"}).
					Return([]model.Book{storedBook}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: "[" + storedBookJSON + "]",
		},
		{
			name:   "get",
			method: http.MethodGet,
			target: "/api/books/1",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().GetBook(gomock.Any(), int64(1)).Return(storedBook, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: storedBookJSON,
		},
		{
			name:         "get. bad id",
			method:       http.MethodGet,
			target:       "/api/books/abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"invalid id \"abc\""}`,
		},
		{
			name:   "get. not found",
			method: http.MethodGet,
			target: "/api/books/9",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().GetBook(gomock.Any(), int64(9)).Return(model.Book{}, errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"message":"not found"}`,
		},
		{
			name:   "update. id mismatch",
			method: http.MethodPut,
			target: "/api/books/2",
			body:   storedBookJSON,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().UpdateBook(gomock.Any(), int64(2), gomock.Any()).Return(model.Book{}, errs.ErrIDMismatch)
			},
			expectedCode: http.StatusNotAcceptable,
			expectedBody: `{"message":"id does not match"}`,
		},
		{
			name:   "update",
			method: http.MethodPut,
			target: "/api/books/1",
			body:   storedBookJSON,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				req := bookReq
				req.ID = 1
				r.EXPECT().UpdateBook(gomock.Any(), int64(1), req).Return(storedBook, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: storedBookJSON,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/api/books/1",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().DeleteBook(gomock.Any(), int64(1)).Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "delete. internal",
			method: http.MethodDelete,
			target: "/api/books/1",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().DeleteBook(gomock.Any(), int64(1)).Return(errors.New("db internal"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"db internal"}`,
		},
	})
}

func TestHandler_SearchBook(t *testing.T) {
	t.Parallel()
	run(t, []testCase{
		{
			name:   "found existing",
			method: http.MethodGet,
			target: "/api/books/search?isbn=111",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().SearchBook(gomock.Any(), "111").Return(storedBook, model.FoundExisting, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: storedBookJSON,
		},
		{
			name:   "found externally",
			method: http.MethodGet,
			target: "/api/books/search?isbn=111",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().SearchBook(gomock.Any(), "111").Return(storedBook, model.FoundExternally, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: storedBookJSON,
		},
		{
			name:         "empty isbn",
			method:       http.MethodGet,
			target:       "/api/books/search?isbn=",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"isbn is required"}`,
		},
		{
			name:   "not found",
			method: http.MethodGet,
			target: "/api/books/search?isbn=000",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().SearchBook(gomock.Any(), "000").Return(model.Book{}, model.SearchStatus(""), errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"message":"not found"}`,
		},
		{
			name:   "provider down",
			method: http.MethodGet,
			target: "/api/books/search?isbn=000",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().SearchBook(gomock.Any(), "000").
					Return(model.Book{}, model.SearchStatus(""), errors.Wrap(errs.ErrTransport, "GET"))
			},
			expectedCode: http.StatusBadGateway,
			expectedBody: `{"message":"GET: book metadata provider unavailable"}`,
		},
		{
			name:   "bad metadata",
			method: http.MethodGet,
			target: "/api/books/search?isbn=000",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().SearchBook(gomock.Any(), "000").
					Return(model.Book{}, model.SearchStatus(""), errs.ErrFormat)
			},
			expectedCode: http.StatusBadGateway,
			expectedBody: `{"message":"unparsable book metadata"}`,
		},
	})
}

func TestHandler_Users(t *testing.T) {
	t.Parallel()
	owner := storedUser.WithBooks([]model.Book{storedBook})
	run(t, []testCase{
		{
			name:   "create",
			method: http.MethodPost,
			target: "/api/users",
			body:   `{"username":"jdoe","name":"Jane","birthdate":"1990-01-02","password":"s3cret"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().CreateUser(gomock.Any(), model.UserRequest{
					Username:  ptr("jdoe"),
					Name:      ptr("Jane"),
					Birthdate: ptr(model.NewDate(1990, 1, 2)),
					Password:  ptr("s3cret"),
				}).Return(storedUser, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: storedUserJSON,
		},
		{
			name:   "create. duplicate username",
			method: http.MethodPost,
			target: "/api/users",
			body:   `{"username":"jdoe","name":"Jane","birthdate":"1990-01-02"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
					Return(model.User{}, errors.Wrap(errs.ErrConflict, "users_username_key"))
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"message":"users_username_key: already exists"}`,
		},
		{
			name:   "list by username",
			method: http.MethodGet,
			target: "/api/users?username=jdoe",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().ListUsers(gomock.Any(), "jdoe").Return([]model.User{storedUser}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: "[" + storedUserJSON + "]",
		},
		{
			name:   "list empty",
			method: http.MethodGet,
			target: "/api/users",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().ListUsers(gomock.Any(), "").Return([]model.User{}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:   "get with books",
			method: http.MethodGet,
			target: "/api/users/3",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().GetUser(gomock.Any(), int64(3)).Return(owner, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":3,"username":"jdoe","name":"Jane","birthdate":"1990-01-02","books":[` + storedBookJSON + `]}`,
		},
		{
			name:   "update. not found",
			method: http.MethodPut,
			target: "/api/users/4",
			body:   `{"id":4,"username":"x","name":"X","birthdate":"2000-10-10"}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().UpdateUser(gomock.Any(), int64(4), gomock.Any()).Return(model.User{}, errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"message":"not found"}`,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/api/users/3",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().DeleteUser(gomock.Any(), int64(3)).Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "add book",
			method: http.MethodPut,
			target: "/api/users/3/books",
			body:   bookJSON,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().AddBook(gomock.Any(), int64(3), bookReq).Return(owner, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":3,"username":"jdoe","name":"Jane","birthdate":"1990-01-02","books":[` + storedBookJSON + `]}`,
		},
		{
			name:   "add book. already owned",
			method: http.MethodPut,
			target: "/api/users/3/books",
			body:   bookJSON,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().AddBook(gomock.Any(), int64(3), bookReq).Return(model.User{}, errs.ErrAlreadyOwned)
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"message":"book already owned"}`,
		},
		{
			name:   "remove book",
			method: http.MethodDelete,
			target: "/api/users/3/books",
			body:   storedBookJSON,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().RemoveBook(gomock.Any(), int64(3), storedBook).Return(storedUser, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: storedUserJSON,
		},
	})
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	e := handler.New(service_mocks.NewMockLibraryService(c), zap.NewNop()).NewRouter()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}
