package user

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	policies "wedding-invitation/internal/application/policies/user"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentReset struct {
	to, username, url string
}

type fakeMailer struct {
	sent []sentReset
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, toEmail, username, resetURL string) error {
	f.sent = append(f.sent, sentReset{toEmail, username, resetURL})
	return nil
}

type fixture struct {
	svc    *Service
	mr     *miniredis.Miniredis
	mailer *fakeMailer
	now    time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	mr := miniredis.RunT(t)
	f := &fixture{mr: mr, mailer: &fakeMailer{}, now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	f.svc = &Service{
		DB:      db,
		Rdb:     redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Mailer:  f.mailer,
		SiteURL: "https://wedding.example/",
		Now:     func() time.Time { return f.now },
	}
	return f
}

var root = Actor{ID: 1, Role: constants.SuperAdmin}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreate_HashesAndDefaultsRole(t *testing.T) {
	f := setup(t)
	u, err := f.svc.Create(context.Background(), root, CreateInput{
		Username: "ayu", Password: "s3cretpass", FullName: "  Ayu   Lestari ", Email: strPtr(" Ayu@Example.com "),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.Admin, u.Role)
	assert.True(t, u.IsActive)
	assert.Equal(t, "Ayu Lestari", u.FullName)
	require.NotNil(t, u.Email)
	assert.Equal(t, "ayu@example.com", *u.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass")))
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "s3cretpass"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "short", FullName: "Ayu"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu", Role: "owner"})
	assert.Equal(t, policies.ErrInvalidRole, err)

	_, err = f.svc.Create(ctx, Actor{ID: 2, Role: constants.Admin}, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu", Role: constants.SuperAdmin})
	assert.Equal(t, policies.ErrOnlySuperAdminsCanAssignSuperAdmin, err)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu Two"})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, "Username already exists", e.Message)
}

func TestUpdate_RoleChangeRevokesSessions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boss, _, err := f.svc.EnsureAdmin(ctx, "boss", "s3cretpass", "")
	require.NoError(t, err)
	u, err := f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu"})
	require.NoError(t, err)

	f.mr.Set("session:abc", "{}")
	_, err = f.mr.SAdd("user_sessions:"+strconv.FormatUint(uint64(u.ID), 10), "abc")
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, Actor{ID: boss.ID, Role: constants.SuperAdmin}, u.ID, UpdateInput{
		Role: strPtr(constants.Viewer), FullName: strPtr("Ayu L"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.Viewer, got.Role)
	assert.Equal(t, "Ayu L", got.FullName)
	assert.False(t, f.mr.Exists("session:abc"))
}

func TestUpdate_CannotChangeOwnRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boss, _, err := f.svc.EnsureAdmin(ctx, "boss", "s3cretpass", "")
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, Actor{ID: boss.ID, Role: constants.SuperAdmin}, boss.ID, UpdateInput{Role: strPtr(constants.Viewer)})
	assert.Equal(t, policies.ErrUsersCannotModifyTheirOwnRole, err)
}

func TestUpdate_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Update(context.Background(), root, 404, UpdateInput{FullName: strPtr("x")})
	assert.Equal(t, policies.ErrTargetUserNotFound, err)
}

func TestUpdate_DeactivateAndPassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boss, _, err := f.svc.EnsureAdmin(ctx, "boss", "s3cretpass", "")
	require.NoError(t, err)
	actor := Actor{ID: boss.ID, Role: constants.SuperAdmin}
	u, err := f.svc.Create(ctx, actor, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu"})
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, actor, u.ID, UpdateInput{IsActive: boolPtr(false), Password: strPtr("an0therpass")})
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("an0therpass")))

	_, err = f.svc.Update(ctx, actor, boss.ID, UpdateInput{IsActive: boolPtr(false)})
	assert.Equal(t, policies.ErrUsersCannotDeactivateThemselves, err)
}

func TestDelete_SoftDeletes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boss, created, err := f.svc.EnsureAdmin(ctx, "boss", "s3cretpass", "")
	require.NoError(t, err)
	require.True(t, created)
	actor := Actor{ID: boss.ID, Role: constants.SuperAdmin}
	u, err := f.svc.Create(ctx, actor, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, actor, u.ID))
	var stored domain.AdminUser
	require.NoError(t, f.svc.DB.First(&stored, u.ID).Error)
	assert.False(t, stored.IsActive)

	assert.Equal(t, policies.ErrUsersCannotDeactivateThemselves, f.svc.Delete(ctx, actor, boss.ID))

	users, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first, created, err := f.svc.EnsureAdmin(ctx, "boss", "s3cretpass", "The Boss")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, constants.SuperAdmin, first.Role)

	again, created, err := f.svc.EnsureAdmin(ctx, "boss", "different-pass", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
}

func TestPasswordReset_Flow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u, err := f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu", Email: strPtr("ayu@example.com")})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestReset(ctx, "AYU@example.com"))
	require.Len(t, f.mailer.sent, 1)
	sent := f.mailer.sent[0]
	assert.Equal(t, "ayu@example.com", sent.to)
	assert.Equal(t, "ayu", sent.username)
	require.True(t, strings.HasPrefix(sent.url, "https://wedding.example/admin/reset-password?token="))
	token := strings.TrimPrefix(sent.url, "https://wedding.example/admin/reset-password?token=")
	assert.Len(t, token, 32)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "brand-new-pass"))
	var stored domain.AdminUser
	require.NoError(t, f.svc.DB.First(&stored, u.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new-pass")))

	// Single use.
	assert.Equal(t, ErrInvalidResetToken, f.svc.ResetPassword(ctx, token, "another-pass"))
}

func TestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.mailer.sent)
}

func TestPasswordReset_Expired(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, root, CreateInput{Username: "ayu", Password: "s3cretpass", FullName: "Ayu", Email: strPtr("ayu@example.com")})
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestReset(ctx, "ayu@example.com"))
	require.Len(t, f.mailer.sent, 1)
	token := f.mailer.sent[0].url[strings.Index(f.mailer.sent[0].url, "token=")+len("token="):]

	f.now = f.now.Add(ResetTokenTTL + time.Minute)
	assert.Equal(t, ErrInvalidResetToken, f.svc.ResetPassword(ctx, token, "brand-new-pass"))
}

func TestPasswordReset_ShortPassword(t *testing.T) {
	f := setup(t)
	err := f.svc.ResetPassword(context.Background(), "tok", "short")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
