package httputil

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
)

// Schema validates request bodies against a JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// LoadSchema compiles the JSON schema at path in fsys.
func LoadSchema(fsys fs.FS, path string) (Schema, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Schema{}, fmt.Errorf("reading schema %s: %w", path, err)
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return Schema{}, fmt.Errorf("compiling schema %s: %w", path, err)
	}

	return Schema{schema: s}, nil
}

// MustLoadSchema is like LoadSchema but panics if the schema cannot be loaded.
func MustLoadSchema(fsys fs.FS, path string) Schema {
	s, err := LoadSchema(fsys, path)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate validates the request body. The body is restored so that it can be bound afterwards.
func (s Schema) Validate(c *gin.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	res, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return ErrInvalidBody
	}

	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidBody, strings.Join(details, "; "))
	}

	return nil
}
