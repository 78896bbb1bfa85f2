package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem is an RFC 7807 error body. Type points at the RFC 9110
// subsection describing the status code.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

var statusSections = map[int]string{
	http.StatusBadRequest:          "15.5.1",
	http.StatusUnauthorized:        "15.5.2",
	http.StatusForbidden:           "15.5.4",
	http.StatusNotFound:            "15.5.5",
	http.StatusInternalServerError: "15.6.1",
}

func typeURI(status int) string {
	section, ok := statusSections[status]
	if !ok {
		return "about:blank"
	}
	return fmt.Sprintf("https://tools.ietf.org/html/rfc9110#section-%s", section)
}

// WriteProblem writes a problem+json response for the given status and
// human-readable detail. Instance is taken from the request path.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	p := Problem{
		Type:     typeURI(status),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteJSON writes a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
