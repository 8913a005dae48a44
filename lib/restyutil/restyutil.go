// Package restyutil records full request/response transcripts of resty
// clients for debugging scrapes against the live portal.
package restyutil

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Recorder interface {
	Record(id string, transcript string)
}

type DirRecorder struct {
	directory string
}

func NewDirRecorder(dir string) DirRecorder {
	os.RemoveAll(dir)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		panic(err)
	}
	return DirRecorder{directory: dir}
}

func (r DirRecorder) Record(id string, transcript string) {
	err := os.WriteFile(filepath.Join(r.directory, id), []byte(transcript), 0600)
	if err != nil {
		slog.Warn("failed to write http transcript", "id", id, "err", err)
	}
}

// Attach dumps a transcript of every completed request to the recorder.
// `rec` may be nil, in which case this is a no-op.
func Attach(client *resty.Client, rec Recorder) {
	if rec == nil {
		return
	}
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&counter, 1)
		rec.Record(fmt.Sprintf("%04d", id), transcript(res))
		return nil
	})
}

func formatHeaders(headers http.Header) string {
	var out strings.Builder
	for k, vals := range headers {
		for _, v := range vals {
			fmt.Fprintf(&out, "%s: %s\n", k, v)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func requestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	read, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(read)
}

func transcript(res *resty.Response) string {
	var out strings.Builder

	fmt.Fprintf(&out, "---- REQUEST ----\n\n%s %s\n\n", res.Request.Method, res.Request.URL)
	if res.Request.RawRequest != nil {
		fmt.Fprintf(&out, "%s\n\n%s\n\n", formatHeaders(res.Request.RawRequest.Header), requestBody(res.Request.RawRequest))
	}

	responseUrl := res.Request.URL
	if redirected, err := res.RawResponse.Location(); err == nil {
		responseUrl = redirected.String()
	}
	fmt.Fprintf(
		&out, "---- RESPONSE ----\n\n%d %s\n\n%s\n\n%s",
		res.StatusCode(), responseUrl, formatHeaders(res.Header()), res.String(),
	)

	return out.String()
}
