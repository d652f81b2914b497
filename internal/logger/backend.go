package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

var (
	backendMu   sync.Mutex
	backendLog  *log.Logger
	backendDump bool
)

// SetBackendWriter sets the sink for raw backend exchanges. nil disables it.
func SetBackendWriter(w io.Writer) {
	backendMu.Lock()
	defer backendMu.Unlock()
	if w == nil {
		backendLog = nil
		return
	}
	backendLog = log.New(w, "", log.LstdFlags)
}

// EnableBackendPayloadDump toggles inclusion of response bodies in the exchange log.
func EnableBackendPayloadDump(enabled bool) {
	backendMu.Lock()
	backendDump = enabled
	backendMu.Unlock()
}

type exchangeSection struct {
	Title string
	Body  string
}

func logExchange(kind, endpoint, requestID string, sections []exchangeSection) {
	backendMu.Lock()
	l := backendLog
	backendMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[BACKEND]")
	for _, tag := range []string{kind, endpoint, requestID} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

// LogBackendRequest records the outgoing multipart fields (never the file bytes).
func LogBackendRequest(endpoint, requestID string, fields map[string]string, fileSizes map[string]int) {
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%q", k, v))
	}
	for k, n := range fileSizes {
		parts = append(parts, fmt.Sprintf("%s=<%d bytes>", k, n))
	}
	logExchange("request", endpoint, requestID, []exchangeSection{{Title: "FIELDS", Body: strings.Join(parts, "\n")}})
}

// LogBackendResponse records the status and, when dumping is enabled, the raw body.
func LogBackendResponse(endpoint, requestID string, status int, body string) {
	sections := []exchangeSection{{Title: "STATUS", Body: fmt.Sprintf("%d", status)}}
	backendMu.Lock()
	dump := backendDump
	backendMu.Unlock()
	if dump && strings.TrimSpace(body) != "" {
		sections = append(sections, exchangeSection{Title: "RAW", Body: body})
	}
	logExchange("response", endpoint, requestID, sections)
}
