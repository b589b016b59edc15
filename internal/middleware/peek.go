package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
)

// bindPeek decodes the request body into v and then restores it so the
// downstream handler can bind the same body again. Supports the JSON
// and urlencoded-form bodies the auth endpoints accept.
func bindPeek(c echo.Context, v any) error {
	req := c.Request()
	if req.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))

	ct := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ct, echo.MIMEApplicationJSON):
		return json.Unmarshal(raw, v)
	case strings.HasPrefix(ct, echo.MIMEApplicationForm):
		vals, err := url.ParseQuery(string(raw))
		if err != nil {
			return err
		}
		assignFormFields(vals, v)
		return nil
	}
	return nil
}

// assignFormFields copies url-encoded values into string struct fields
// tagged `form:"..."`. Only flat string fields are needed here.
func assignFormFields(vals url.Values, v any) {
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("form")
		if tag == "" || rt.Field(i).Type.Kind() != reflect.String {
			continue
		}
		if s := vals.Get(tag); s != "" {
			rv.Field(i).SetString(s)
		}
	}
}
