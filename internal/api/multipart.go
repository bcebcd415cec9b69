package api

import (
	"bytes"
	"io"
	"mime/multipart"
)

type multipartFile struct {
	field    string
	filename string
	content  []byte
}

// Multipart is a multipart/form-data request body. Its content type, boundary included,
// comes from the writer rather than from any default set on the client.
type Multipart struct {
	fields [][2]string
	files  []multipartFile
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, [2]string{name, value})
	return m
}

func (m *Multipart) File(field, filename string, content []byte) *Multipart {
	m.files = append(m.files, multipartFile{field: field, filename: filename, content: content})
	return m
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
