package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrTransfer classifies every failed direct upload.
var ErrTransfer = errors.New("transfer failed")

// TransferError describes a failed PUT. StatusCode is 0 when no response was received.
type TransferError struct {
	StatusCode int
	Err        error
}

func (e *TransferError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transfer failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("transfer failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Is reports ErrTransfer for any TransferError.
func (e *TransferError) Is(target error) bool { return target == ErrTransfer }

// Transferer uploads a body to a presigned URL.
type Transferer interface {
	Put(ctx context.Context, url string, body io.Reader, size int64, contentType string, onProgress func(int)) error
}

// HTTPTransfer PUTs bodies straight to object storage. It holds no per-call state.
type HTTPTransfer struct {
	client *http.Client
}

// NewHTTPTransfer wraps client. A nil client gets an otelhttp-instrumented default.
func NewHTTPTransfer(client *http.Client) *HTTPTransfer {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &HTTPTransfer{client: client}
}

// Put sends one PUT with Content-Length set to size. onProgress, when set, receives
// non-decreasing percentages of bytes handed to the transport and a final 100 on success.
// There is no retry.
func (t *HTTPTransfer) Put(ctx context.Context, url string, body io.Reader, size int64, contentType string, onProgress func(int)) error {
	pr := &progressReader{r: body, total: size, report: onProgress}

	var reqBody io.Reader = pr
	if size == 0 {
		reqBody = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, reqBody)
	if err != nil {
		return &TransferError{Err: err}
	}
	req.ContentLength = size
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &TransferError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransferError{StatusCode: resp.StatusCode}
	}
	pr.finish()
	return nil
}

// progressReader may be read by the transport's write loop after Do returns, hence mu.
type progressReader struct {
	mu     sync.Mutex
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		// The final 100 is reserved for a 2xx response.
		if pct > 99 {
			pct = 99
		}
		p.emit(pct)
	}
	return n, err
}

func (p *progressReader) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emit(100)
}

func (p *progressReader) emit(pct int) {
	if p.report == nil || pct <= p.last {
		return
	}
	p.last = pct
	p.report(pct)
}
