package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report json names instead of Go field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// writeError maps service errors to HTTP responses.
func writeError(c *gin.Context, log *logger.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Detail())
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	case errors.Is(err, domain.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"image": []string{
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.",
		}})
	default:
		log.Errorf("api", "%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSON decodes the body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err).Detail())
		return false
	}
	return true
}

func bindingErrors(err error) *domain.ValidationError {
	out := &domain.ValidationError{Fields: domain.FieldErrors{}}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			out.Fields.Add(fe.Field(), fieldMessage(fe))
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		out.Fields.Add(field, fmt.Sprintf("Expected a value of type %s.", typeErr.Type))
	case errors.Is(err, io.EOF):
		out.Fields.Add("non_field_errors", "No data provided.")
	default:
		out.Fields.Add("non_field_errors", "Invalid data: "+err.Error())
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

// queryParser reads optional id query parameters, collecting errors per parameter.
type queryParser struct {
	c    *gin.Context
	errs domain.FieldErrors
}

func newQueryParser(c *gin.Context) *queryParser {
	return &queryParser{c: c, errs: domain.FieldErrors{}}
}

func (p *queryParser) id(name string) int64 {
	raw := p.c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		p.errs.Add(name, "Enter a whole number.")
		return 0
	}
	return v
}

func (p *queryParser) ids(name string) []int64 {
	raw := p.c.Query(name)
	if raw == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || v < 1 {
			p.errs.Add(name, "Enter a comma-separated list of whole numbers.")
			return nil
		}
		out = append(out, v)
	}
	return out
}

// ok writes a 400 and returns false when any parameter was malformed.
func (p *queryParser) ok() bool {
	if len(p.errs) == 0 {
		return true
	}
	p.c.JSON(http.StatusBadRequest, (&domain.ValidationError{Fields: p.errs}).Detail())
	return false
}

type pageResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageFromQuery reads page and page_size; a malformed page is answered with 404.
func pageFromQuery(c *gin.Context) (domain.Page, bool) {
	p := domain.Page{Number: 1}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
			return p, false
		}
		p.Number = n
	}
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.Size = n
		}
	}
	return p.Normalize(), true
}

// writePage renders list as a paginated envelope; pages past the end are 404.
func writePage[T, R any](c *gin.Context, p domain.Page, list domain.List[T], convert func(T) R) {
	p = p.Normalize()
	if p.Number > 1 && p.Offset() >= list.Count {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
		return
	}

	resp := pageResponse[R]{Count: list.Count, Results: make([]R, 0, len(list.Items))}
	for _, item := range list.Items {
		resp.Results = append(resp.Results, convert(item))
	}
	if p.Offset()+p.Size < list.Count {
		resp.Next = pageURL(c, p.Number+1)
	}
	if p.Number > 1 {
		resp.Previous = pageURL(c, p.Number-1)
	}
	c.JSON(http.StatusOK, resp)
}

func pageURL(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	q := c.Request.URL.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}
