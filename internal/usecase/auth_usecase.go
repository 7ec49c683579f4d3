package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hamono/internal/config"
	"hamono/internal/domain/model"
	repo "hamono/internal/repository"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

// refreshtokenの有効期限
const refreshTokenTTL = 14 * 24 * time.Hour

// 入力検証はvalidatorパッケージに寄せる。
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

type AccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

// Bodyはそのままレスポンスにする。RefreshTokenPlainはcookieに入れる（bodyに出さない）。
type LoginResult struct {
	User              UserDTO        `json:"user"`
	Token             AccessTokenDTO `json:"token"`
	RefreshTokenPlain string         `json:"-"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	validator AuthValidator
}

func NewAuthUsecase(
	cfg config.Config,
	users repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		rtRepo:    rtRepo,
		validator: validator,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	if err := u.validator.ValidateRegister(ctx, in.Email, in.Password); err != nil {
		return UserDTO{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		//email unique違反はここに来る
		return UserDTO{}, NewHTTPError(http.StatusConflict, "email already used")
	}

	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return LoginResult{}, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil || user == nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginResult{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	token, err := u.issueAccessToken(user, now)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	plainRefresh, err := u.issueRefreshToken(ctx, user.ID, in.UserAgent, now)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginResult{
		User:              toUserDTO(user),
		Token:             token,
		RefreshTokenPlain: plainRefresh,
	}, nil
}

// refresh tokenをローテーションして新しいaccess tokenを発行する。
// 使用済みトークンの再利用は全トークン削除＋token_versionアップで強制ログアウト。
func (u *AuthUsecase) Refresh(ctx context.Context, plainRefresh string, userAgent string) (LoginResult, error) {
	if plainRefresh == "" {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefresh))
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := time.Now()

	if rt.RevokedAt != nil || now.After(rt.ExpiresAt) {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//再利用検知。盗まれた可能性があるので全部無効にする。
	if rt.UsedAt != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		_ = u.users.IncrementTokenVersion(ctx, rt.UserID)
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if err != nil || user == nil || !user.IsActive {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	token, err := u.issueAccessToken(user, now)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	plainNext, err := u.issueRefreshToken(ctx, user.ID, userAgent, now)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginResult{
		User:              toUserDTO(user),
		Token:             token,
		RefreshTokenPlain: plainNext,
	}, nil
}

// token_versionを上げて既存のaccess tokenを無効にし、refresh tokenも全削除する。
func (u *AuthUsecase) Logout(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return nil
}

func (u *AuthUsecase) issueAccessToken(user *model.User, now time.Time) (AccessTokenDTO, error) {
	expiresAt := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return AccessTokenDTO{}, err
	}

	return AccessTokenDTO{
		AccessToken: signed,
		ExpiresIn:   int(accessTokenTTL.Seconds()),
	}, nil
}

func (u *AuthUsecase) issueRefreshToken(ctx context.Context, userID int64, userAgent string, now time.Time) (string, error) {
	plain, err := generateSecureToken(32)
	if err != nil {
		return "", err
	}

	rt := &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashRefreshToken(plain),
		UserAgent: userAgent,
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return "", err
	}

	return plain, nil
}

// 平文はDBに置かず、sha256のhex表現で保存・検索する
func hashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func generateSecureToken(bytesLen int) (string, error) {
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
