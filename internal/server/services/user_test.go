package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"assistant-service/internal/common"
	"assistant-service/internal/dbx"
	"assistant-service/internal/server/auth"
	"assistant-service/internal/server/config"
	"assistant-service/internal/server/models"
	refreshtokensrepo "assistant-service/internal/server/repositories/refreshtokens"
	revokedtokensrepo "assistant-service/internal/server/repositories/revokedtokens"
	tasksrepo "assistant-service/internal/server/repositories/tasks"
	usersrepo "assistant-service/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, cfg)
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	getByIDOut *models.User
	getByIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDOut, nil
}

type fakeRefreshRepo struct {
	createErr error

	findOut *models.RefreshToken
	findErr error

	revokeOK  bool
	revokeErr error

	revokeAllN   int64
	revokeAllErr error

	revokedHashes []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, tokenHash string, validity time.Duration) error {
	return f.createErr
}
func (f *fakeRefreshRepo) FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeRefreshRepo) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	if f.revokeErr != nil {
		return false, f.revokeErr
	}
	f.revokedHashes = append(f.revokedHashes, tokenHash)
	return f.revokeOK, nil
}
func (f *fakeRefreshRepo) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	return f.revokeAllN, f.revokeAllErr
}

type fakeRevokedRepo struct {
	insertErr error
	inserted  []string

	isRevoked    bool
	isRevokedErr error
}

func (f *fakeRevokedRepo) Insert(ctx context.Context, jti string, expiresAt time.Time) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, jti)
	return nil
}
func (f *fakeRevokedRepo) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	return f.isRevoked, f.isRevokedErr
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	rv *fakeRevokedRepo
	t  *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error                 { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                       { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository       { return m.r }
func (m *fakeRepoManager) RevokedTokens(db dbx.DBTX) revokedtokensrepo.Repository       { return m.rv }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository                       { return m.t }

// --- Register ---

func TestRegister_SuccessAndError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rmOK := &fakeRepoManager{
		u: &fakeUsersRepo{createOut: &models.User{ID: 42, UserName: "alice"}},
		r: &fakeRefreshRepo{},
	}
	sOK := newUserService(t, db, rmOK)
	u, err := sOK.Register(context.Background(), "alice", "alice@example.com", "pw")
	if err != nil || u.ID != 42 {
		t.Fatalf("Register ok: got (%v, %v)", u, err)
	}

	rmDup := &fakeRepoManager{
		u: &fakeUsersRepo{createErr: common.ErrUserExists},
		r: &fakeRefreshRepo{},
	}
	sDup := newUserService(t, db, rmDup)
	if _, err := sDup.Register(context.Background(), "alice", "alice@example.com", "pw"); !errors.Is(err, common.ErrUserExists) {
		t.Fatalf("duplicate → ErrUserExists, got %v", err)
	}

	rmErr := &fakeRepoManager{
		u: &fakeUsersRepo{createErr: errBoom{}},
		r: &fakeRefreshRepo{},
	}
	sErr := newUserService(t, db, rmErr)
	_, err = sErr.Register(context.Background(), "bob", "bob@example.com", "pw")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("Register expected wrapped error, got %v", err)
	}
}

// --- Login ---

func testUser(password string) *models.User {
	salt, _ := auth.GenerateSalt()
	return &models.User{
		ID:           7,
		UserName:     "alice",
		Salt:         salt,
		PasswordHash: auth.HashPassword(salt, password),
	}
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// not found → invalid credentials
	rmNF := &fakeRepoManager{
		u: &fakeUsersRepo{getErr: common.ErrorNotFound},
		r: &fakeRefreshRepo{},
	}
	sNF := newUserService(t, db, rmNF)
	if _, _, err := sNF.Login(context.Background(), "ghost", "x"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("notfound → ErrInvalidCredentials, got %v", err)
	}

	// internal error
	rmIE := &fakeRepoManager{
		u: &fakeUsersRepo{getErr: errBoom{}},
		r: &fakeRefreshRepo{},
	}
	sIE := newUserService(t, db, rmIE)
	if _, _, err := sIE.Login(context.Background(), "u", "x"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("internal → ErrorInternal, got %v", err)
	}

	// wrong password → invalid credentials
	rmWP := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: testUser("right")},
		r: &fakeRefreshRepo{},
	}
	sWP := newUserService(t, db, rmWP)
	if _, _, err := sWP.Login(context.Background(), "alice", "wrong"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("wrong password → ErrInvalidCredentials, got %v", err)
	}

	rmOK := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: testUser("right")},
		r: &fakeRefreshRepo{},
	}
	sOK := newUserService(t, db, rmOK)
	user, pair, err := sOK.Login(context.Background(), "alice", "right")
	if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("Login success: pair=%+v err=%v", pair, err)
	}
	if user.ID != 7 {
		t.Fatalf("Login user: %+v", user)
	}
}

// --- VerifyAccessToken / RevokeAccessToken ---

func TestVerifyAccessToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	token, err := auth.GenerateToken("alice", 7, []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rm := &fakeRepoManager{rv: &fakeRevokedRepo{}}
	s := newUserService(t, db, rm)

	claims, err := s.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != 7 || claims.Subject != "alice" {
		t.Fatalf("claims: %+v", claims)
	}

	// revoked jti
	rmRev := &fakeRepoManager{rv: &fakeRevokedRepo{isRevoked: true}}
	sRev := newUserService(t, db, rmRev)
	if _, err := sRev.VerifyAccessToken(context.Background(), token); !errors.Is(err, common.ErrTokenRevoked) {
		t.Fatalf("revoked → ErrTokenRevoked, got %v", err)
	}

	// registry failure
	rmErr := &fakeRepoManager{rv: &fakeRevokedRepo{isRevokedErr: errBoom{}}}
	sErr := newUserService(t, db, rmErr)
	if _, err := sErr.VerifyAccessToken(context.Background(), token); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("registry error → ErrorInternal, got %v", err)
	}

	// bad token
	if _, err := s.VerifyAccessToken(context.Background(), "garbage"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("garbage → ErrInvalidToken, got %v", err)
	}
}

func TestRevokeAccessToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// an already expired token can still be revoked
	token, err := auth.GenerateToken("alice", 7, []byte("k"), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rv := &fakeRevokedRepo{}
	s := newUserService(t, db, &fakeRepoManager{rv: rv})

	if err := s.RevokeAccessToken(context.Background(), token); err != nil {
		t.Fatalf("RevokeAccessToken: %v", err)
	}
	if len(rv.inserted) != 1 {
		t.Fatalf("expected 1 denylisted jti, got %d", len(rv.inserted))
	}

	if err := s.RevokeAccessToken(context.Background(), "garbage"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("garbage → ErrInvalidToken, got %v", err)
	}

	sErr := newUserService(t, db, &fakeRepoManager{rv: &fakeRevokedRepo{insertErr: errBoom{}}})
	if err := sErr.RevokeAccessToken(context.Background(), token); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("insert error → ErrorInternal, got %v", err)
	}
}

// --- Refresh ---

func freshRefreshRecord() *models.RefreshToken {
	return &models.RefreshToken{
		ID:        1,
		UserID:    7,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
}

func TestRefresh_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	r := &fakeRefreshRepo{findOut: freshRefreshRecord(), revokeOK: true}
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getByIDOut: &models.User{ID: 7, UserName: "alice"}},
		r: r,
	}
	s := newUserService(t, db, rm)

	user, pair, err := s.Refresh(context.Background(), "refresh-xyz")
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", pair)
	}
	if user.ID != 7 {
		t.Fatalf("user: %+v", user)
	}
	if len(r.revokedHashes) != 1 || r.revokedHashes[0] != auth.HashRefreshSecret("refresh-xyz") {
		t.Fatalf("presented hash not revoked: %v", r.revokedHashes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefresh_UnknownRevokedExpired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rmNF := &fakeRepoManager{r: &fakeRefreshRepo{findErr: common.ErrorNotFound}}
	sNF := newUserService(t, db, rmNF)
	if _, _, err := sNF.Refresh(context.Background(), "r"); !errors.Is(err, common.ErrTokenNotFound) {
		t.Fatalf("unknown → ErrTokenNotFound, got %v", err)
	}

	revoked := freshRefreshRecord()
	revoked.Revoked = true
	rmRev := &fakeRepoManager{r: &fakeRefreshRepo{findOut: revoked}}
	sRev := newUserService(t, db, rmRev)
	if _, _, err := sRev.Refresh(context.Background(), "r"); !errors.Is(err, common.ErrTokenRevoked) {
		t.Fatalf("revoked → ErrTokenRevoked, got %v", err)
	}

	expired := freshRefreshRecord()
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	rmExp := &fakeRepoManager{r: &fakeRefreshRepo{findOut: expired}}
	sExp := newUserService(t, db, rmExp)
	if _, _, err := sExp.Refresh(context.Background(), "r"); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expired → ErrTokenExpired, got %v", err)
	}
}

func TestRefresh_FindErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{r: &fakeRefreshRepo{findErr: errBoom{}}}
	s := newUserService(t, db, rm)

	_, _, err := s.Refresh(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error searching refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
}

func TestRefresh_RevokeErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getByIDOut: &models.User{ID: 7}},
		r: &fakeRefreshRepo{findOut: freshRefreshRecord(), revokeErr: errBoom{}},
	}
	s := newUserService(t, db, rm)

	_, _, err := s.Refresh(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error revoking refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped revoke error, got %v", err)
	}
}

func TestRefresh_CreateErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getByIDOut: &models.User{ID: 7}},
		r: &fakeRefreshRepo{findOut: freshRefreshRecord(), revokeOK: true, createErr: errBoom{}},
	}
	s := newUserService(t, db, rm)

	if _, _, err := s.Refresh(context.Background(), "r"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("create failure → ErrorInternal, got %v", err)
	}
}

// --- Logout ---

func TestLogout_Flags(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	token, err := auth.GenerateToken("alice", 7, []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	rm := &fakeRepoManager{
		r:  &fakeRefreshRepo{revokeOK: true},
		rv: &fakeRevokedRepo{},
	}
	s := newUserService(t, db, rm)

	res := s.Logout(context.Background(), token, "refresh-xyz")
	if !res.AccessRevoked || !res.RefreshRevoked {
		t.Fatalf("both flags expected: %+v", res)
	}

	// undecodable access token, no refresh secret
	res = s.Logout(context.Background(), "garbage", "")
	if res.AccessRevoked || res.RefreshRevoked {
		t.Fatalf("no flags expected: %+v", res)
	}

	// unknown refresh secret revokes nothing
	rmMiss := &fakeRepoManager{
		r:  &fakeRefreshRepo{revokeOK: false},
		rv: &fakeRevokedRepo{},
	}
	sMiss := newUserService(t, db, rmMiss)
	res = sMiss.Logout(context.Background(), token, "unknown")
	if !res.AccessRevoked || res.RefreshRevoked {
		t.Fatalf("only access flag expected: %+v", res)
	}
}

func TestRevokeAllRefreshTokens(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{r: &fakeRefreshRepo{revokeAllN: 3}}
	s := newUserService(t, db, rm)

	n, err := s.RevokeAllRefreshTokens(context.Background(), 7)
	if err != nil || n != 3 {
		t.Fatalf("RevokeAllRefreshTokens: n=%d err=%v", n, err)
	}
}

func TestGetUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{getByIDOut: &models.User{ID: 7, UserName: "alice"}}}
	s := newUserService(t, db, rm)
	u, err := s.GetUser(context.Background(), 7)
	if err != nil || u.UserName != "alice" {
		t.Fatalf("GetUser: u=%+v err=%v", u, err)
	}

	rmNF := &fakeRepoManager{u: &fakeUsersRepo{getByIDErr: common.ErrorNotFound}}
	if _, err := newUserService(t, db, rmNF).GetUser(context.Background(), 8); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("missing → ErrorNotFound, got %v", err)
	}
}
