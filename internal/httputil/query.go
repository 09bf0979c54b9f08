package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GetBodyFields returns the names of the fields of resource that are set in the request body.
//
// The body is restored so that it can be bound afterwards.
func GetBodyFields(c *gin.Context, resource any) ([]any, error) {
	body, err := readBody(c)
	if err != nil {
		return []any{}, err
	}

	// Parse the body into a map to have all fields available
	var mapBody map[string]any
	if err := json.Unmarshal(body, &mapBody); err != nil {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return []any{}, ErrInvalidBody
	}

	var bodyFields []any
	val := reflect.Indirect(reflect.ValueOf(resource))
	for i := range val.NumField() {
		field := val.Type().Field(i).Name
		param, _, _ := strings.Cut(val.Type().Field(i).Tag.Get("json"), ",")

		if _, ok := mapBody[param]; ok {
			bodyFields = append(bodyFields, field)
		}
	}
	return bodyFields, nil
}

// readBody reads the request body and restores it so that it can be read again.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, ErrRequestBodyEmpty
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrRequestBodyEmpty
	}

	return body, nil
}
