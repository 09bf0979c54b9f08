package controllers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/controllers"
	"github.com/pocketguard/backend/internal/test"
)

func (suite *TestSuiteStandard) TestGetCategories() {
	session := suite.register("asha")

	r := test.Request(suite.T(), http.MethodGet, baseURL+"/api/categories", nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var categories []controllers.Category
	test.DecodeResponse(suite.T(), &r, &categories)

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	suite.Assert().Equal([]string{"Education", "Entertainment", "Food", "Other", "Shopping", "Transport"}, names)

	food := categories[2]
	suite.Assert().Equal(baseURL+"/api/categories/"+food.ID.String(), food.Links.Self)
	suite.Assert().Equal(baseURL+"/api/expenses?category="+food.ID.String(), food.Links.Expenses)
}

func (suite *TestSuiteStandard) TestCategoriesIsolated() {
	asha := suite.register("asha")
	ravi := suite.register("ravi")

	food := suite.category(asha, "Food")

	r := test.Request(suite.T(), http.MethodGet, baseURL+"/api/categories/"+food.ID.String(), nil, ravi)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodOptions, baseURL+"/api/categories/"+food.ID.String(), nil, ravi)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodGet, baseURL+"/api/categories/"+food.ID.String(), nil, asha)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestCreateCategory() {
	session := suite.register("asha")

	r := test.Request(suite.T(), http.MethodPost, baseURL+"/api/categories", controllers.CategoryEditable{
		Name:      " Snacks ",
		Icon:      "cookie",
		IconColor: "#F97316",
	}, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var category controllers.Category
	test.DecodeResponse(suite.T(), &r, &category)
	suite.Assert().Equal("Snacks", category.Name)
	suite.Assert().Equal(suite.user(session).ID, category.UserID)

	r = test.Request(suite.T(), http.MethodGet, category.Links.Self, nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestCreateCategoryInvalid() {
	session := suite.register("asha")

	tests := []struct {
		name string
		body string
	}{
		{"Empty body", ""},
		{"Missing name", `{"icon": "cookie"}`},
		{"Invalid color", `{"name": "Snacks", "iconColor": "orange"}`},
		{"Wrong type", `{"name": 17}`},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, baseURL+"/api/categories", tt.body, session)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestGetCategoryErrors() {
	session := suite.register("asha")

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Not a UUID", "not-a-uuid", http.StatusBadRequest},
		{"Unknown", uuid.NewString(), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, baseURL+"/api/categories/"+tt.id, nil, session)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestSessionDatabaseError() {
	session := suite.register("asha")
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodGet, baseURL+"/api/categories", nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
	suite.Assert().Contains(test.DecodeError(suite.T(), &r), "The request id is")
}
