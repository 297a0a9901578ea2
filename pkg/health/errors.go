package health

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/relay-healthwatch/pkg/httpclient"
)

const maxBodySnippet = 512

// TransportError is returned by GetHealth whenever no valid health response
// was obtained: the request failed, the status was not 2xx, or the body did
// not decode. StatusCode is 0 when no response arrived.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("health request to %s failed: %v", e.URL, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("health request to %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	case e.Body != "":
		return fmt.Sprintf("health request to %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("health request to %s returned status %d", e.URL, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err carries a *TransportError and returns it.
func IsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// summarizeBody reduces a failed response body to something fit for a log line.
// HTML error pages (proxies, load balancers) collapse to their <title>.
func summarizeBody(resp httpclient.Response) string {
	body := resp.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	if isHTML(resp) {
		if title := htmlTitle(body); title != "" {
			return title
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodySnippet {
		return truncateUTF8(s, maxBodySnippet) + "..."
	}
	return s
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isHTML(resp httpclient.Response) bool {
	if h := resp.Header(); h != nil {
		if ct := h.Get("Content-Type"); ct != "" {
			return strings.Contains(strings.ToLower(ct), "text/html")
		}
	}
	return strings.HasPrefix(http.DetectContentType(resp.Body()), "text/html")
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return strings.Join(strings.Fields(title), " ")
}
