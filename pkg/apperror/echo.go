package apperror

import "github.com/labstack/echo/v4"

// ToHTTP maps a domain error to an echo HTTP error carrying the
// structured kind, message, and detail lines.
func ToHTTP(err error) error {
	kind := KindOf(err)
	body := map[string]interface{}{
		"kind":    kind.String(),
		"message": err.Error(),
	}
	if details := DetailsOf(err); len(details) > 0 {
		body["details"] = details
	}
	return echo.NewHTTPError(HTTPStatus(kind), body)
}
