// Package pixel renders the tracking snippet customers embed on their sites
// and relays the page views it reports.
package pixel

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"text/template"
)

// DefaultEndpoint is where the snippet reports page views
const DefaultEndpoint = "http://localhost/api/pixel.php"

var ErrMissingCustomerID = errors.New("customer_id is required")

var snippetTemplate = template.Must(template.New("pixel").Parse(`(function () {
  var payload = {
    customer_id: {{.CustomerID}},
    page: window.location.href,
    referrer: document.referrer
  };
  fetch({{.Endpoint}}, {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify(payload)
  })
    .then(function (res) { return res.text(); })
    .then(function (body) { console.log("Pixel response:", body); })
    .catch(function (err) { console.log("Pixel error:", err); });
})();
`))

// Snippet returns the JavaScript a customer pastes into their pages. It only
// reports the page view and logs the response.
func Snippet(endpoint, customerID string) (string, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", ErrMissingCustomerID
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	// JSON string literals are valid JavaScript string literals
	quotedID, err := json.Marshal(customerID)
	if err != nil {
		return "", err
	}
	quotedEndpoint, err := json.Marshal(endpoint)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = snippetTemplate.Execute(&buf, struct {
		CustomerID string
		Endpoint   string
	}{string(quotedID), string(quotedEndpoint)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EmbedTag wraps the snippet in a script element
func EmbedTag(endpoint, customerID string) (string, error) {
	js, err := Snippet(endpoint, customerID)
	if err != nil {
		return "", err
	}
	return "<script>\n" + js + "</script>\n", nil
}
