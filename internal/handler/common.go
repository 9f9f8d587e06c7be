package handler

import (
    "errors"
    "strconv"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
)

// validate is shared by all handlers.  go-playground/validator checks
// struct fields in declaration order, which the request types rely on:
// the first reported violation is always the first declared field that
// failed.
var validate = validator.New()

// getUserID extracts the user_id claim stored by the JWT middleware and
// converts it to uint64.  The claim arrives as float64 when decoded from
// JSON, but other numeric types are tolerated.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// firstValidationMessage translates the first violation in err into a
// caller-facing message, using the handler-supplied field->message map.
// Falls back to a generic message for anything unmapped.
func firstValidationMessage(err error, messages map[string]string) string {
    var verrs validator.ValidationErrors
    if errors.As(err, &verrs) && len(verrs) > 0 {
        if msg, ok := messages[verrs[0].Field()]; ok {
            return msg
        }
    }
    return "invalid request"
}
