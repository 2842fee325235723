package echoapi_test

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/lumina/apps/api/echo"
	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/user"
	"github.com/trezcool/lumina/tests"
)

const pwd = "Lum1na!Secure#42"

func Test_userApi_login(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", pwd, user.RoleStudent, true)
	testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog@lumina.edu", pwd, user.RoleStudent, false)

	type login struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me,omitempty"`
	}
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: marchallObj(t, login{}),
			wantData: marchallObj(t, echoapi.AuthResponse{Message: "Email & Password required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, login{Email: "hero", Password: pwd}),
			wantData: marchallObj(t, echoapi.AuthResponse{Message: "Invalid Email Format"}),
		},
		{
			name: "unknown email", wantCode: http.StatusUnauthorized, body: marchallObj(t, login{Email: "lol@lumina.edu", Password: pwd}),
			wantData: marchallObj(t, echoapi.AuthResponse{Message: "Invalid credentials"}),
		},
		{
			name: "wrong password", wantCode: http.StatusUnauthorized, body: marchallObj(t, login{Email: student.Email, Password: "lol"}),
			wantData: marchallObj(t, echoapi.AuthResponse{Message: "Invalid credentials"}),
		},
		{
			name: "deactivated", wantCode: http.StatusForbidden, body: marchallObj(t, login{Email: "ndog@lumina.edu", Password: pwd}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/login"
	}
	runTests(t, e, tests)

	for _, remember := range []bool{false, true} {
		rec := e.serve(http.MethodPost, "/v1/users/login", "", marchallObj(t, login{Email: " HERO@lumina.edu ", Password: pwd, RememberMe: remember}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.AuthResponse
		unmarshal(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "Login successful", resp.Message)
		require.NotNil(t, resp.User)
		assert.Equal(t, student.ID, resp.User.ID)
		assert.NotNil(t, resp.User.LastLogin)

		claims := new(echoapi.Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(core.Conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, remember, claims.Remember)
		lifetime := time.Unix(claims.ExpiresAt, 0).Sub(time.Unix(claims.IssuedAt, 0))
		if remember {
			assert.Equal(t, core.Conf.Server.JWTRememberExpirationDelta, lifetime)
		} else {
			assert.Equal(t, core.Conf.Server.JWTExpirationDelta, lifetime)
		}
	}
}

func Test_userApi_register(t *testing.T) {
	e := setup(t)
	testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", pwd, user.RoleStudent, true)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: marchallObj(t, user.NewUser{Name: "Ada"}),
			wantData: marchallObj(t, echoapi.AuthResponse{Message: "Email & Password required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, user.NewUser{Name: "Ada", Email: "ada", Password: pwd}),
			wantData: marchallObj(t, echoapi.AuthResponse{Message: "Invalid Email Format"}),
		},
		{
			name: "existing email", wantCode: http.StatusConflict,
			body:     marchallObj(t, user.NewUser{Name: "Hero 2", Email: "Hero@Lumina.edu", Password: pwd}),
			wantData: marchallObj(t, echoapi.AuthResponse{Message: "User Already Exists"}),
		},
		{
			name: "admin cannot self-register", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "Ada", Email: "ada@lumina.edu", Password: pwd, Role: user.RoleAdmin}),
			wantData: marchallObj(t, map[string]string{"role": "role must be one of STUDENT or INSTRUCTOR"}),
		},
		{
			name: "weak password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "Ada", Email: "ada@lumina.edu", Password: "lol"}),
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/register"
	}
	runTests(t, e, tests)

	t.Run("student defaults", func(t *testing.T) {
		rec := e.serve(http.MethodPost, "/v1/users/register", "", marchallObj(t, user.NewUser{Name: " Ada ", Email: "ada@lumina.edu", Password: pwd}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.AuthResponse
		unmarshal(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "User Registered", resp.Message)
		assert.NotEmpty(t, resp.Token)
		require.NotNil(t, resp.User)
		assert.Equal(t, "Ada", resp.User.Name)
		assert.Equal(t, user.RoleStudent, resp.User.Role)
		assert.Equal(t, user.DefaultBranch, resp.User.Branch)
		assert.Equal(t, user.DefaultClassName, resp.User.ClassName)
	})

	t.Run("instructor has no academics", func(t *testing.T) {
		nu := user.NewUser{Name: "Prof", Email: "prof@lumina.edu", Password: pwd, Role: "instructor", Branch: "CS"}
		rec := e.serve(http.MethodPost, "/v1/users/register", "", marchallObj(t, nu))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp echoapi.AuthResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, user.RoleInstructor, resp.User.Role)
		assert.Empty(t, resp.User.Branch)
	})
}

func Test_userApi_logout(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", pwd, user.RoleStudent, true)
	token := getToken(t, student)

	rec := e.serve(http.MethodGet, "/v1/courses", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.store.Len())

	rec = e.serve(http.MethodPost, "/v1/users/logout", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, e.store.Len())

	rec = e.serve(http.MethodPost, "/v1/users/logout", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_userApi_me(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", pwd, user.RoleStudent, true)
	naughty := testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog@lumina.edu", pwd, user.RoleStudent, false)
	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin@lumina.edu", pwd, user.RoleAdmin, true)

	str := func(s string) *string { return &s }
	bPtr := func(b bool) *bool { return &b }
	updated := student
	updated.Name = "Super Hero"
	updated.Branch = "Computer Science"

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Deactivated", method: http.MethodGet, path: "/v1/users/me", token: getToken(t, naughty), wantCode: http.StatusForbidden},
		{name: "Get", method: http.MethodGet, path: "/v1/users/me", token: getToken(t, student), wantData: marchallObj(t, student)},
		{
			name: "Student cannot change role", method: http.MethodPut, path: "/v1/users/me", token: getToken(t, student),
			body: marchallObj(t, user.UpdateUser{Role: user.RoleAdmin}), wantCode: http.StatusForbidden,
		},
		{
			name: "Student cannot reactivate", method: http.MethodPut, path: "/v1/users/me", token: getToken(t, student),
			body: marchallObj(t, user.UpdateUser{IsActive: bPtr(true)}), wantCode: http.StatusForbidden,
		},
		{
			name: "Email taken", method: http.MethodPut, path: "/v1/users/me", token: getToken(t, student),
			body: marchallObj(t, user.UpdateUser{Email: admin.Email}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
	}
	runTests(t, e, tests)

	rec := e.serve(http.MethodPut, "/v1/users/me", getToken(t, student),
		marchallObj(t, user.UpdateUser{Name: "Super Hero", Branch: str("Computer Science")}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got user.User
	unmarshal(t, rec, &got)
	assert.Equal(t, updated.Name, got.Name)
	assert.Equal(t, updated.Branch, got.Branch)
	assert.Equal(t, student.Email, got.Email)
	assert.Equal(t, student.ClassName, got.ClassName)
}

func Test_userApi_changePassword(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", pwd, user.RoleStudent, true)
	token := getToken(t, student)
	newPwd := "N3w!Stronger#Pwd"

	tests := []httpTest{
		{
			name: "wrong old password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ChangeUserPassword{OldPassword: "lol", Password: newPwd, PasswordConfirm: newPwd}),
			wantData: marchallObj(t, map[string]string{"old_password": "wrong password"}),
		},
		{
			name: "mismatch", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.ChangeUserPassword{OldPassword: pwd, Password: newPwd, PasswordConfirm: "lol"}),
		},
		{
			name: "changed", body: marchallObj(t, user.ChangeUserPassword{OldPassword: pwd, Password: newPwd, PasswordConfirm: newPwd}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been changed."}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPut
		tests[i].path = "/v1/users/me/password"
		tests[i].token = token
	}
	runTests(t, e, tests)

	_, err := e.usrSvc.Authenticate(t.Context(), student.Email, newPwd)
	assert.NoError(t, err)
}

func Test_userApi_query(t *testing.T) {
	e := setup(t)
	now := time.Now()
	usr1 := testutil.CreateUser(t, e.usrRepo, "User", "awe@lumina.edu", "", user.RoleStudent, true, now.Add(time.Hour))
	usr2 := testutil.CreateUser(t, e.usrRepo, "King", "king@lumina.edu", "", user.RoleInstructor, true, now.Add(2*time.Hour))
	naughty := testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog@lumina.edu", "", user.RoleStudent, false, now.Add(3*time.Hour))
	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin@lumina.edu", "", user.RoleAdmin, true, now.Add(4*time.Hour))
	adminToken := getToken(t, admin)

	path := func(search, ordering string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if isActive != nil {
			if *isActive {
				v.Add("is_active", "true")
			} else {
				v.Add("is_active", "false")
			}
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }
	empty := marchallList(t)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, usr2), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, usr1, usr2, naughty, admin)},
		{name: "search (unknown)", path: path("lol", "", nil), token: adminToken, wantData: empty},
		{name: "search=KIN", path: path("KIN", "", nil), token: adminToken, wantData: marchallList(t, usr2)},
		{name: "role=student", path: path("", "", nil, "student"), token: adminToken, wantData: marchallList(t, usr1, naughty)},
		{name: "is_active=false", path: path("", "", bPtr(false)), token: adminToken, wantData: marchallList(t, naughty)},
		{name: "order by -created_at", path: path("", "-created_at", nil), token: adminToken, wantData: marchallList(t, admin, naughty, usr2, usr1)},
		{name: "order by name", path: path("", "name", nil), token: adminToken, wantData: marchallList(t, admin, usr2, naughty, usr1)},
		{name: "roles", path: "/v1/users/roles", token: getToken(t, usr1), wantData: marchallObj(t, user.Roles)},
	}
	for i := range tests {
		tests[i].method = http.MethodGet
	}
	runTests(t, e, tests)
}

func Test_userApi_detail(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", "", user.RoleStudent, true)
	other := testutil.CreateUser(t, e.usrRepo, "Other", "other@lumina.edu", "", user.RoleStudent, true)
	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin@lumina.edu", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Admin required", method: http.MethodGet, path: "/v1/users/" + student.ID, token: getToken(t, student), wantCode: http.StatusForbidden},
		{name: "Not found", method: http.MethodGet, path: "/v1/users/lol", token: adminToken, wantCode: http.StatusNotFound},
		{name: "Get", method: http.MethodGet, path: "/v1/users/" + student.ID, token: adminToken, wantData: marchallObj(t, student)},
		{name: "Cannot delete self", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken, wantCode: http.StatusForbidden},
		{name: "Delete", method: http.MethodDelete, path: "/v1/users/" + other.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "Deleted", method: http.MethodGet, path: "/v1/users/" + other.ID, token: adminToken, wantCode: http.StatusNotFound},
	}
	runTests(t, e, tests)

	// deactivating a user closes their workspace and locks them out
	token := getToken(t, student)
	require.Equal(t, http.StatusOK, e.serve(http.MethodGet, "/v1/courses", token).Code)
	require.Equal(t, 1, e.store.Len())

	bFalse := false
	rec := e.serve(http.MethodPut, "/v1/users/"+student.ID, adminToken, marchallObj(t, user.UpdateUser{IsActive: &bFalse}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, e.store.Len())
	assert.Equal(t, http.StatusForbidden, e.serve(http.MethodGet, "/v1/courses", token).Code)
}

func Test_userApi_refreshToken(t *testing.T) {
	e := setup(t)
	naughty := testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog@lumina.edu", "", user.RoleStudent, false)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", "", user.RoleStudent, true)

	unrefreshable := echoapi.GetUserClaims(student, false, time.Now().Add(-2*core.Conf.Server.JWTRefreshExpirationDelta).Unix())
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshable)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/token-refresh"
	}
	runTests(t, e, tests)

	// cannot guess new token.. just check that it's not empty
	rec := e.serve(http.MethodPost, "/v1/users/token-refresh", getToken(t, student))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp echoapi.TokenResponse
	unmarshal(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
}

func Test_userApi_resetPassword(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", "", user.RoleStudent, true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})
	pathRegex := regexp.MustCompile("/password-reset/.+/.+")

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "email must be a valid email address"}),
		},
		{name: "unknown email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@lumina.edu"}), wantData: successData},
		{name: "known email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: student.Email}), wantData: successData},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/password-reset"
	}
	runTests(t, e, tests)

	sent := e.userMail.SentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, student.Email, msg.To[0].Address)
	assert.True(t, strings.Contains(msg.TextContent, student.Name))
	assert.Regexp(t, pathRegex, msg.TextContent)
	assert.Regexp(t, pathRegex, msg.HTMLContent)
}

func Test_userApi_confirmPasswordReset(t *testing.T) {
	e := setup(t)
	student := testutil.CreateUser(t, e.usrRepo, "Hero", "hero@lumina.edu", "lol", user.RoleStudent, true)
	validUID := user.EncodeUID(student)
	validToken, err := user.MakeToken(student)
	require.NoError(t, err)
	newPwd := "N3w!Stronger#Pwd"

	tests := []httpTest{
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: validUID, Password: newPwd, PasswordConfirm: newPwd}),
			wantData: marchallObj(t, httpErr{Error: user.ErrInvalidResetRequest.Error()}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: "lol", Password: newPwd, PasswordConfirm: newPwd}),
			wantData: marchallObj(t, httpErr{Error: user.ErrInvalidResetRequest.Error()}),
		},
		{
			name: "valid", body: marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: newPwd, PasswordConfirm: newPwd}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
		{
			name: "token used", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: newPwd, PasswordConfirm: newPwd}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/password-reset-confirm"
	}
	runTests(t, e, tests)
}
