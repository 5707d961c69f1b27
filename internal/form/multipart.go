package form

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes the entries as a multipart/form-data body, in order.
// It returns the body and its Content-Type header value.
func Encode(data *Data) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, e := range data.entries {
		if !e.IsFile() {
			if err := writer.WriteField(e.Name, e.Value); err != nil {
				return nil, "", fmt.Errorf("could not write field %s: %w", e.Name, err)
			}
			continue
		}

		contentType := e.File.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(e.File.Data)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(e.Name), quoteEscaper.Replace(e.File.Filename)))
		h.Set("Content-Type", contentType)

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("could not create form file: %w", err)
		}
		if _, err := part.Write(e.File.Data); err != nil {
			return nil, "", fmt.Errorf("could not copy file data: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("could not close writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}
