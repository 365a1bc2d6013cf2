// Package practicum is the transport for the homework status API.
package practicum

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"syscall"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
)

// Client fetches homework statuses with an OAuth token.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *logrus.Entry
}

func NewClient(endpoint, token string, timeout time.Duration, logger *logrus.Entry) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Fetch implements homework.Fetcher. Failures are tagged as
// KindTransportFailure, KindBadStatus or KindDecodeFailure.
func (c *Client) Fetch(ctx context.Context, from homework.Cursor) (any, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, homework.Wrap(homework.KindTransportFailure, "invalid endpoint", err)
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(int64(from), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, homework.Wrap(homework.KindTransportFailure, "failed to build request", err)
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The raw error names local addresses and ports; keep it in the log only.
		c.logger.WithError(err).WithField("from_date", from).Warn("Status API request failed")
		return nil, homework.Errorf(homework.KindTransportFailure, "request to status API failed: %s", transportCause(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, homework.Errorf(homework.KindBadStatus, "status API answered %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var payload any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, homework.Wrap(homework.KindDecodeFailure, "failed to decode status API response", err)
	}

	c.logger.WithFields(logrus.Fields{
		"from_date": from,
	}).Debug("Status API response received")
	return payload, nil
}

// transportCause reduces a client error to a message that stays the same
// for as long as the underlying condition does.
func transportCause(err error) string {
	var (
		errno  syscall.Errno
		dnsErr *net.DNSError
		opErr  *net.OpError
		urlErr *url.Error
		netErr net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "connection closed by server"
	case errors.As(err, &errno):
		return errno.Error()
	case errors.As(err, &dnsErr):
		return "lookup " + dnsErr.Name + ": " + dnsErr.Err
	case errors.As(err, &opErr):
		return opErr.Op + " failed"
	case errors.As(err, &urlErr):
		return urlErr.Err.Error()
	default:
		return err.Error()
	}
}

var _ homework.Fetcher = (*Client)(nil)
