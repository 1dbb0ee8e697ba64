package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// Fields of a form-encoded registration that carry JSON text.
var jsonFormFields = map[string]bool{
	"structure": true,
	"state":     true,
	"providers": true,
}

// isForm reports whether the request declares a form body.
func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// parseForm reads a urlencoded or multipart form body.
func parseForm(r *http.Request) (url.Values, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

// decodeRegistration reads a registration from a JSON or form body. Form
// values for name, service and url are text; structure, state and providers
// are JSON text.
func decodeRegistration(w http.ResponseWriter, r *http.Request) (*trigger.Registration, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if !isForm(r) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, &trigger.ValidationError{Message: "Invalid trigger data. dict data expected"}
		}
		return trigger.ParseRegistration(body)
	}

	form, err := parseForm(r)
	if err != nil {
		return nil, &trigger.ValidationError{Message: "Invalid trigger data. dict data expected"}
	}
	reg := &trigger.Registration{}
	fields := map[string]*json.RawMessage{
		"name":      &reg.Name,
		"service":   &reg.Service,
		"url":       &reg.URL,
		"structure": &reg.Structure,
		"state":     &reg.State,
		"providers": &reg.Providers,
	}
	for key, dst := range fields {
		if _, ok := form[key]; !ok {
			continue
		}
		*dst = formValue(form.Get(key), jsonFormFields[key])
	}
	return reg, nil
}

// formValue turns one form value into JSON. JSON-typed fields holding
// invalid JSON are kept as strings so validation reports their real kind.
func formValue(v string, asJSON bool) json.RawMessage {
	if asJSON && json.Valid([]byte(v)) {
		return json.RawMessage(v)
	}
	b, _ := json.Marshal(v)
	return b
}

// notifyRequest is the decoded body of POST /notify.
type notifyRequest struct {
	Name    string
	Payload map[string]any
}

// decodeNotify reads a notify request. A payload that is absent or not an
// object decodes to nil, which the service reports as an invalid payload.
func decodeNotify(w http.ResponseWriter, r *http.Request) (*notifyRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isForm(r) {
		form, err := parseForm(r)
		if err != nil {
			return nil, &trigger.PayloadError{Message: "Invalid payload"}
		}
		req := &notifyRequest{Name: form.Get("name")}
		if raw, ok := form["payload"]; ok {
			req.Payload = decodeObject([]byte(raw[0]))
			return req, nil
		}
		// Without a payload field the remaining fields are the payload.
		for key := range form {
			if key == "name" {
				continue
			}
			if req.Payload == nil {
				req.Payload = make(map[string]any)
			}
			req.Payload[key] = form.Get(key)
		}
		return req, nil
	}

	var body struct {
		Name    json.RawMessage `json:"name"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, &trigger.PayloadError{Message: "Invalid payload"}
	}
	req := &notifyRequest{Name: nameOf(body.Name)}
	req.Payload = decodeObject(body.Payload)
	return req, nil
}

// nameOf renders a JSON name value as the lookup key.
func nameOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// decodeObject decodes a JSON object keeping numbers as json.Number. Anything
// else yields nil.
func decodeObject(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

// parseLimit reads the optional positive limit query parameter.
func parseLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, &trigger.ValidationError{Field: "limit", Message: "Invalid limit. A positive integer is expected"}
	}
	return n, nil
}
