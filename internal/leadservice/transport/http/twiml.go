package http

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strconv"
)

// Minimal TwiML vocabulary for this service: speak, record, hang up, text
// back. Rendered with encoding/xml; Twilio only cares about the markup.

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type Record struct {
	XMLName            xml.Name `xml:"Record"`
	Timeout            int      `xml:"timeout,attr"`
	Transcribe         bool     `xml:"transcribe,attr"`
	TranscribeCallback string   `xml:"transcribeCallback,attr,omitempty"`
	Action             string   `xml:"action,attr,omitempty"`
	MaxLength          int      `xml:"maxLength,attr,omitempty"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// VoiceResponse is the <Response> document returned to voice webhooks.
// Element order follows field order: say first, then record or hang up.
type VoiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Say     []Say
	Record  *Record
	Hangup  *Hangup
}

type Message struct {
	XMLName xml.Name `xml:"Message"`
	Text    string   `xml:",chardata"`
}

// MessagingResponse is the <Response> document returned to SMS webhooks.
type MessagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message []Message
}

const sayVoice = "alice"

// renderTwiML writes doc as a TwiML document. The provider expects a 200
// with text/xml; a marshalling failure here would be a programming error,
// so it is logged and degraded to an empty <Response/>.
func renderTwiML(w http.ResponseWriter, logger *slog.Logger, doc any) {
	body, err := xml.Marshal(doc)
	if err != nil {
		logger.Error("Failed to marshal TwiML response", "error", err)
		body = []byte("<Response/>")
	}
	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("Content-Length", strconv.Itoa(len(xml.Header)+len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}
