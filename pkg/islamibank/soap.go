package islamibank

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// The bank's gateway wraps every response body in a SOAP envelope whose
// payload is a single pipe-delimited string. The first field is TRUE or
// FALSE and the last field is a response code.

const (
	envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS  = "http://service.ws.mt.ibbl"
	beanNS     = "http://bean.ws.mt.ibbl/xsd"

	// placeholder marks optional message fields the bank expects present
	// but unset.
	placeholder = "?"

	dateLayout = "2006-01-02"
)

// field is one element inside a SOAP operation body, rendered in order.
type field struct {
	Name  string
	Value string
	Bean  bool // xsd: namespace instead of ser:
}

func buildEnvelope(method string, fields []field) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	fmt.Fprintf(&b, `<soapenv:Envelope xmlns:soapenv=%q xmlns:ser=%q xmlns:xsd=%q>`, envelopeNS, serviceNS, beanNS)
	b.WriteString(`<soapenv:Header/><soapenv:Body>`)
	fmt.Fprintf(&b, `<ser:%s>`, method)
	writeFields(&b, fields)
	fmt.Fprintf(&b, `</ser:%s>`, method)
	b.WriteString(`</soapenv:Body></soapenv:Envelope>`)
	return b.Bytes()
}

func writeFields(b *bytes.Buffer, fields []field) {
	for _, f := range fields {
		prefix := "ser"
		if f.Bean {
			prefix = "xsd"
		}
		fmt.Fprintf(b, "<%s:%s>", prefix, f.Name)
		xml.EscapeText(b, []byte(f.Value))
		fmt.Fprintf(b, "</%s:%s>", prefix, f.Name)
	}
}

// message wraps fields inside a ser:wsMessage element as a single field
// value cannot express nesting.
func buildMessageEnvelope(method string, auth []field, message []field) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	fmt.Fprintf(&b, `<soapenv:Envelope xmlns:soapenv=%q xmlns:ser=%q xmlns:xsd=%q>`, envelopeNS, serviceNS, beanNS)
	b.WriteString(`<soapenv:Header/><soapenv:Body>`)
	fmt.Fprintf(&b, `<ser:%s>`, method)
	writeFields(&b, auth)
	b.WriteString(`<ser:wsMessage>`)
	writeFields(&b, message)
	b.WriteString(`</ser:wsMessage>`)
	fmt.Fprintf(&b, `</ser:%s>`, method)
	b.WriteString(`</soapenv:Body></soapenv:Envelope>`)
	return b.Bytes()
}

// extractBody pulls the concatenated character data out of the response
// envelope. The gateway nests the payload one element deep inside Body but
// the wrapper element name varies per operation, so all text is collected.
func extractBody(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding soap response: %w", err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			sb.Write(cd)
		}
	}
	body := strings.TrimSpace(sb.String())
	if body == "" {
		return "", fmt.Errorf("empty soap response body")
	}
	return body, nil
}

// reply is a decoded pipe-delimited response.
type reply struct {
	OK     bool
	Fields []string
	Code   string
	Raw    string
}

// decodeReply splits the payload on pipes. Single-field payloads carry no
// status flag and are rejected.
func decodeReply(body string) (*reply, error) {
	parts := strings.Split(body, "|")
	if len(parts) < 2 {
		return nil, fmt.Errorf("malformed vendor response %q", body)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return &reply{
		OK:     strings.EqualFold(parts[0], "TRUE"),
		Fields: parts,
		Code:   parts[len(parts)-1],
		Raw:    body,
	}, nil
}

func (a *Adapter) call(ctx context.Context, method string, envelope []byte) (*reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("building soap request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml;charset="utf-8"`)
	req.Header.Set("SOAPAction", method)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned http %d", method, resp.StatusCode)
	}

	body, err := extractBody(raw)
	if err != nil {
		return nil, err
	}
	return decodeReply(body)
}
