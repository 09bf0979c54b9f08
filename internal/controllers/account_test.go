package controllers_test

import (
	"net/http"
	"testing"

	"github.com/pocketguard/backend/internal/controllers"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/test"
)

func (suite *TestSuiteStandard) TestRegister() {
	r := test.Request(suite.T(), http.MethodPost, baseURL+"/api/register", controllers.Registration{
		Username: "asha",
		Password: "a long password",
		Name:     "Asha Verma",
		Email:    "asha@example.com",
		UPIID:    "asha@okbank",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	suite.Assert().NotContains(r.Body.String(), "password")

	var user models.User
	test.DecodeResponse(suite.T(), &r, &user)
	suite.Assert().Equal("asha", user.Username)
	suite.Assert().Equal("asha@okbank", user.UPIID)
	suite.Assert().True(user.UPISpendingLimits)
	suite.Assert().True(user.UPIBlockEnabled)
	suite.Assert().False(user.UPICurrentlyBlocked)
	suite.Assert().False(user.BankAccountConnected)

	session := test.Session(suite.T(), &r)
	suite.Assert().Equal(user.ID, suite.user(session).ID)
}

func (suite *TestSuiteStandard) TestRegisterDuplicate() {
	suite.register("asha")

	r := test.Request(suite.T(), http.MethodPost, baseURL+"/api/register", controllers.Registration{
		Username: "asha",
		Password: "another long password",
		Name:     "Another Asha",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Equal(models.ErrUsernameTaken.Error(), test.DecodeError(suite.T(), &r))
}

func (suite *TestSuiteStandard) TestRegisterInvalid() {
	tests := []struct {
		name string
		body any
	}{
		{"Empty body", ""},
		{"Broken JSON", `{"username": "asha"`},
		{"Short password", map[string]any{"username": "asha", "password": "short", "name": "Asha"}},
		{"Missing name", map[string]any{"username": "asha", "password": "a long password"}},
		{"Username with spaces", map[string]any{"username": "a s h a", "password": "a long password", "name": "Asha"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, baseURL+"/api/register", tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestLogin() {
	suite.register("asha")

	tests := []struct {
		name     string
		username string
		password string
		status   int
	}{
		{"Correct credentials", "asha", "a long password", http.StatusOK},
		{"Username with whitespace", " asha ", "a long password", http.StatusOK},
		{"Wrong password", "asha", "not the password", http.StatusUnauthorized},
		{"Unknown user", "ravi", "a long password", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, baseURL+"/api/login", controllers.Credentials{
				Username: tt.username,
				Password: tt.password,
			})
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusOK {
				var user models.User
				test.DecodeResponse(t, &r, &user)
				suite.Assert().Equal("asha", user.Username)
				suite.Assert().NotEmpty(r.Result().Cookies())
				return
			}

			suite.Assert().Equal("invalid username or password", test.DecodeError(t, &r))
		})
	}
}

func (suite *TestSuiteStandard) TestLogout() {
	session := suite.register("asha")

	r := test.Request(suite.T(), http.MethodPost, baseURL+"/api/logout", nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	cookies := r.Result().Cookies()
	suite.Require().Len(cookies, 1)
	suite.Assert().Empty(cookies[0].Value)
	suite.Assert().Negative(cookies[0].MaxAge)
}

func (suite *TestSuiteStandard) TestSessionInvalid() {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"No cookie", map[string]string{}},
		{"Garbage token", map[string]string{"Cookie": "session=not-a-token"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, baseURL+"/api/user", nil, tt.headers)
			test.AssertHTTPStatus(t, &r, http.StatusUnauthorized)
		})
	}
}

func (suite *TestSuiteStandard) TestUpdateProfile() {
	session := suite.register("asha")

	r := test.Request(suite.T(), http.MethodPut, baseURL+"/api/user/profile", map[string]any{
		"name":              "Asha V.",
		"upiSpendingLimits": false,
	}, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var user models.User
	test.DecodeResponse(suite.T(), &r, &user)
	suite.Assert().Equal("Asha V.", user.Name)
	suite.Assert().False(user.UPISpendingLimits)

	// Settings not in the body keep their values
	suite.Assert().True(user.PushNotifications)
	suite.Assert().True(user.UPIBlockEnabled)
	suite.Assert().True(user.AllowCategoryOverflow)
}

func (suite *TestSuiteStandard) TestUpdateProfileInvalid() {
	session := suite.register("asha")

	tests := []struct {
		name string
		body string
	}{
		{"Empty body", ""},
		{"Wrong type", `{"darkMode": "yes"}`},
		{"Empty name", `{"name": ""}`},
		{"Not an object", `[]`},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPut, baseURL+"/api/user/profile", tt.body, session)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}

	suite.Assert().Equal("Test User", suite.user(session).Name)
}

func (suite *TestSuiteStandard) TestAccountOptions() {
	session := suite.register("asha")

	tests := []struct {
		path  string
		allow string
	}{
		{"/api/register", "OPTIONS, POST"},
		{"/api/login", "OPTIONS, POST"},
		{"/api/logout", "OPTIONS, POST"},
		{"/api/user", "OPTIONS, GET"},
		{"/api/user/profile", "OPTIONS, PUT"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.path, func(t *testing.T) {
			r := test.Request(t, http.MethodOptions, baseURL+tt.path, nil, session)
			test.AssertHTTPStatus(t, &r, http.StatusNoContent)
			suite.Assert().Equal(tt.allow, r.Header().Get("allow"))
		})
	}
}
