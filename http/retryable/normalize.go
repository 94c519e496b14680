package retryable

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"strings"
)

// StatusError turns a non-2xx response into an *Error, decoding the
// back end's errors[] when the body is JSON. RetryOnStatus uses it for
// rejected responses.
func StatusError(rsp *Response) *Error {
	out := &Error{
		Status:   rsp.StatusCode,
		Response: rsp,
	}

	body, ok := rsp.Data.(map[string]any)
	if !ok {
		return out
	}

	out.Body = body
	out.Errors = errorEntries(body["errors"])

	return out
}

// normalize returns err as an *Error. Transport errors that are not already
// structured get Status 0 and no entries, so they are never classified.
func normalize(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{Cause: err}
}

func errorEntries(raw any) []ErrorEntry {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	entries := make([]ErrorEntry, 0, len(list))

	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		entry := ErrorEntry{Extra: map[string]any{}}

		for k, v := range obj {
			if k == "message" {
				entry.Message, _ = v.(string)

				continue
			}

			entry.Extra[k] = v
		}

		entries = append(entries, entry)
	}

	return entries
}

// decodeBody returns the JSON value of data, or nil when data is empty, not
// declared as JSON, or malformed.
func decodeBody(data []byte, contentType string) any {
	if len(bytes.TrimSpace(data)) == 0 || !isJSON(contentType, data) {
		return nil
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}

	return out
}

func isJSON(contentType string, data []byte) bool {
	if contentType == "" {
		first := bytes.TrimSpace(data)[0]

		return first == '{' || first == '['
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
