package http

import (
	"encoding/xml"
	"net/http"
)

// twimlResponse is the messaging reply envelope the webhook caller expects:
// a Response element wrapping one Message per outbound text.
type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

func writeTwiML(w http.ResponseWriter, messages ...string) error {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(twimlResponse{Messages: messages})
}
