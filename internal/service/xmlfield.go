package service

import (
	"encoding/xml"
	"strings"
)

// xmlElementText returns the character data of the first element with the
// given local name. Message bodies are stored verbatim and only a handful of
// leaf fields are ever read out, so a token scan is enough; no schema
// knowledge is required.
func xmlElementText(body, name string) (string, bool) {
	decoder := xml.NewDecoder(strings.NewReader(body))
	for {
		token, err := decoder.Token()
		if err != nil {
			return "", false
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}
		var text string
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return "", false
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", false
		}
		return text, true
	}
}
