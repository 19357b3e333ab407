package http

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// parseDateParams reads the two date query parameters every range endpoint
// shares. Writes the error response itself and reports ok.
func parseDateParams(w http.ResponseWriter, r *http.Request, startKey, endKey string) (start, end time.Time, ok bool) {
	var err error
	start, err = parseDate(r.URL.Query().Get(startKey))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid "+startKey)
		return
	}
	end, err = parseDate(r.URL.Query().Get(endKey))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid "+endKey)
		return
	}
	return start, end, true
}
