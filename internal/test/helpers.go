// Package test contains helpers for tests that run requests against the full router.
package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/config"
	"github.com/pocketguard/backend/internal/controllers"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Request is a helper method to simplify making a HTTP request for tests.
//
// The router is configured from the environment. body can be a string,
// a *bytes.Buffer or anything that can be marshalled to JSON.
func Request(t *testing.T, method, reqURL string, body any, headers ...map[string]string) httptest.ResponseRecorder {
	var byteBuffer *bytes.Buffer

	switch b := body.(type) {
	case nil:
		byteBuffer = &bytes.Buffer{}
	case string:
		byteBuffer = bytes.NewBufferString(b)
	case *bytes.Buffer:
		byteBuffer = b
	default:
		byteStr, err := json.Marshal(body)
		if err != nil {
			assert.FailNow(t, "Request body could not be marshalled", err)
		}
		byteBuffer = bytes.NewBuffer(byteStr)
	}

	cfg, err := config.Load()
	if err != nil {
		assert.FailNow(t, "Configuration could not be loaded", err)
	}

	r, teardown, err := router.Config(cfg)
	defer teardown()
	if err != nil {
		assert.FailNow(t, "Router could not be initialized", err)
	}

	co, err := controllers.New(cfg)
	if err != nil {
		assert.FailNow(t, "Controller could not be initialized", err)
	}
	router.AttachRoutes(co, r.Group("/"), cfg)

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(method, reqURL, byteBuffer)
	req.Header.Set("Content-Type", "application/json")

	for _, headerMap := range headers {
		for header, value := range headerMap {
			req.Header.Set(header, value)
		}
	}

	r.ServeHTTP(recorder, req)

	return *recorder
}

// DecodeResponse decodes an HTTP response into a target struct.
func DecodeResponse(t *testing.T, r *httptest.ResponseRecorder, target any) {
	err := json.Unmarshal(r.Body.Bytes(), &target)
	if err != nil {
		assert.FailNow(t, "Parsing error", "Unable to parse response from server %q into %v, '%v', Request ID: %s", r.Body, reflect.TypeOf(target), err, r.Result().Header.Get("x-request-id"))
	}
}

// DecodeError returns the message of an error response.
func DecodeError(t *testing.T, r *httptest.ResponseRecorder) string {
	var e httperror.Error
	DecodeResponse(t, r, &e)
	return e.Message
}

// AssertHTTPStatus verifies that the HTTP response status is correct
func AssertHTTPStatus(t *testing.T, r *httptest.ResponseRecorder, expectedStatus ...int) {
	require.Contains(t, expectedStatus, r.Code, "HTTP status is wrong. Request ID: '%s' Response body: %s", r.Result().Header.Get("x-request-id"), r.Body.String())
}

// Session returns the headers that send the cookies of a response
// with the next request, e.g. the session after a login.
func Session(t *testing.T, r *httptest.ResponseRecorder) map[string]string {
	cookies := r.Result().Cookies()
	require.NotEmpty(t, cookies, "Response did not set any cookie")

	values := make([]string, 0, len(cookies))
	for _, c := range cookies {
		values = append(values, c.Name+"="+c.Value)
	}

	return map[string]string{"Cookie": strings.Join(values, "; ")}
}

// TmpFile returns a path for a file in a temporary directory that is
// removed when the test finishes.
func TmpFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), uuid.NewString())
}
