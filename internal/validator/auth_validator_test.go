package validator

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"hamono/internal/domain/model"
	"hamono/internal/repository"
	"hamono/internal/usecase"

	"github.com/stretchr/testify/assert"
)

// FindByEmailだけ動く軽いスタブ
type stubUserFinder struct {
	repository.UserRepository
	byEmail map[string]*model.User
}

func (s *stubUserFinder) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	return he.Status
}

func TestValidateRegister(t *testing.T) {
	v := NewAuthValidator(&stubUserFinder{byEmail: map[string]*model.User{
		"taken@test.com": {ID: 1, Email: "taken@test.com"},
	}})
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, v.ValidateRegister(ctx, "new@test.com", "password1"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateRegister(ctx, "", "")))
	})

	t.Run("bad email", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateRegister(ctx, "not-an-email", "password1")))
	})

	t.Run("short password", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateRegister(ctx, "new@test.com", "short")))
	})

	t.Run("long password", func(t *testing.T) {
		//bcryptの入力上限を超える
		long := strings.Repeat("a", 73)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateRegister(ctx, "new@test.com", long)))
	})

	t.Run("duplicate email", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, statusOf(t, v.ValidateRegister(ctx, "taken@test.com", "password1")))
	})
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator(&stubUserFinder{})
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "user@test.com", "whatever"))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateLogin(ctx, "", "pw")))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, v.ValidateLogin(ctx, "broken", "pw")))
}
