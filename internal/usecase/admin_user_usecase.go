package usecase

import (
	"context"
	"net/http"
	"time"

	"hamono/internal/domain/model"
	repo "hamono/internal/repository"
)

// 管理画面のユーザー管理（一覧・ロール変更・停止・強制ログアウト）。
type AdminUserUsecase struct {
	users     repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminUserUsecase(
	users repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	auditRepo repo.AuditLogRepository,
) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, rtRepo: rtRepo, auditRepo: auditRepo}
}

type AdminUserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *AdminUserUsecase) List(ctx context.Context, page int, limit int) (AdminUserListOutput, error) {
	if page < 1 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return AdminUserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}

	return AdminUserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *AdminUserUsecase) Detail(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toUserDTO(user), nil
}

// ロール変更。自分自身のロールは変えられない（管理者を誤って失わないため）。
func (u *AdminUserUsecase) UpdateRole(ctx context.Context, actorAdminUserID int64, targetUserID int64, newRole string) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if targetUserID == actorAdminUserID {
		return NewHTTPError(http.StatusBadRequest, "cannot change own role")
	}

	role := model.Role(newRole)
	if role != model.RoleUser && role != model.RoleAdmin {
		return NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user.Role == role {
		return nil
	}

	beforeJSON := `{"role":"` + string(user.Role) + `"}`
	afterJSON := `{"role":"` + string(role) + `"}`

	user.Role = role
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//ロールが変わったら既存トークンは無効にする
	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionUpdateUserRole,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// 停止/再開。停止時はトークンも全て無効にする。
func (u *AdminUserUsecase) SetSuspended(ctx context.Context, actorAdminUserID int64, targetUserID int64, suspended bool) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if targetUserID == actorAdminUserID {
		return NewHTTPError(http.StatusBadRequest, "cannot suspend yourself")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if user.IsActive == !suspended {
		return nil
	}

	action := model.AuditActionSuspendUser
	if !suspended {
		action = model.AuditActionUnsuspendUser
	}
	beforeJSON := `{"is_active":` + boolJSON(user.IsActive) + `}`
	afterJSON := `{"is_active":` + boolJSON(!suspended) + `}`

	user.IsActive = !suspended
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if suspended {
		if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       action,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// 強制ログアウト（token_versionアップ＋refresh token全削除）
func (u *AdminUserUsecase) ForceLogout(ctx context.Context, actorAdminUserID int64, targetUserID int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 監査ログの一覧
func (u *AdminUserUsecase) ListAuditLogs(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func boolJSON(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
