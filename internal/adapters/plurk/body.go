package plurk

import (
	"fmt"
	"io"
	"maps"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Dephilia/rpoaurk/internal/domain"
)

const (
	bodyEmpty     = "empty"
	bodyForm      = "form"
	bodyMultipart = "multipart"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type requestBody struct {
	kind        string
	reader      io.Reader
	contentType string
	closer      func()
}

func (b requestBody) close() {
	if b.closer != nil {
		b.closer()
	}
}

func newRequestBody(params map[string]string, files map[string]string) (requestBody, error) {
	switch {
	case len(files) > 0:
		return newMultipartBody(files)
	case len(params) > 0:
		values := url.Values{}
		for key, value := range params {
			values.Set(key, value)
		}
		return requestBody{
			kind:        bodyForm,
			reader:      strings.NewReader(values.Encode()),
			contentType: "application/x-www-form-urlencoded",
		}, nil
	default:
		return requestBody{kind: bodyEmpty}, nil
	}
}

// newMultipartBody opens every file before anything is sent so a bad path
// fails without a request. Parts are streamed through a pipe.
func newMultipartBody(files map[string]string) (requestBody, error) {
	fields := slices.Sorted(maps.Keys(files))
	opened := make([]*os.File, 0, len(fields))
	closeAll := func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}

	for _, field := range fields {
		file, err := openRegularFile(files[field])
		if err != nil {
			closeAll()
			return requestBody{}, fmt.Errorf("%w: file parameter %q: %w", domain.ErrConfig, field, err)
		}
		opened = append(opened, file)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer closeAll()
		for i, field := range fields {
			if err := writeFilePart(mw, field, opened[i]); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	return requestBody{
		kind:        bodyMultipart,
		reader:      pr,
		contentType: mw.FormDataContentType(),
		closer:      func() { _ = pr.Close() },
	}, nil
}

func openRegularFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return file, nil
}

func writeFilePart(mw *multipart.Writer, field string, file *os.File) error {
	name := filepath.Base(file.Name())

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentTypeFor(name))

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part %q: %w", field, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("stream file %q: %w", file.Name(), err)
	}
	return nil
}

func contentTypeFor(name string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
