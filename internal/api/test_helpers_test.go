package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jswain/questlog-api/internal/api/shared"
	"github.com/jswain/questlog-api/internal/domain"
	"github.com/jswain/questlog-api/internal/service/auth"
	"github.com/jswain/questlog-api/internal/store"
)

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	usersByID    map[uuid.UUID]*domain.User
	usersByEmail map[string]*domain.User
	createErr    error
	updateCalls  int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		usersByID:    make(map[uuid.UUID]*domain.User),
		usersByEmail: make(map[string]*domain.User),
	}
}

func (s *fakeUserStore) add(user *domain.User) {
	s.usersByID[user.ID] = user
	s.usersByEmail[user.Email] = user
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.usersByEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.add(user)
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	s.updateCalls++
	s.add(user)
	return nil
}

// fakeTaskStore is an in-memory store.TaskStore scoped by owner.
type fakeTaskStore struct {
	tasks     map[uuid.UUID]*domain.Task
	createErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (s *fakeTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if len(filter.Statuses) == 0 {
			out = append(out, task)
			continue
		}
		for _, status := range filter.Statuses {
			if task.Status == status {
				out = append(out, task)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeTaskStore) UpdateSchedule(
	ctx context.Context,
	userID, taskID uuid.UUID,
	update store.ScheduleUpdate,
) error {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// fakeJWTService issues predictable tokens for handler tests.
type fakeJWTService struct {
	userID      uuid.UUID
	validateErr error
}

func (s *fakeJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "access-token-" + userID.String(), nil
}

func (s *fakeJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return &auth.Claims{UserID: s.userID, TokenType: "access"}, nil
}

func (s *fakeJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "refresh-token-" + userID.String(), nil
}

func (s *fakeJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return &auth.Claims{UserID: s.userID, TokenType: "refresh"}, nil
}

// fakePasswordVerifier treats the hash as the reversed password-free
// marker "hashed:<password>".
type fakePasswordVerifier struct{}

func (fakePasswordVerifier) Hash(ctx context.Context, password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswordVerifier) Compare(ctx context.Context, hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return auth.ErrInvalidCredentials
	}
	return nil
}

// newJSONRequest builds a request with a JSON body and the
// authenticated user injected into its context.
func newJSONRequest(t *testing.T, method, target string, body interface{}, userID uuid.UUID) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
	}
	return req
}

// withPathParam attaches a chi URL parameter to the request context.
func withPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals a recorded response body into out.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
