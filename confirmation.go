package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ConfirmationOracleFunc adapts a function to the ConfirmationOracle interface.
type ConfirmationOracleFunc func(ctx context.Context, email string) (bool, error)

// IsConfirmed implements ConfirmationOracle.
func (f ConfirmationOracleFunc) IsConfirmed(ctx context.Context, email string) (bool, error) {
	if f == nil {
		return false, nil
	}
	return f(ctx, email)
}

// HTTPConfirmationOracle asks the external membership confirmation module
// whether an email has been confirmed. Transport failures are reported as
// errors, never folded into a false result, so callers can tell "not
// confirmed" from "could not ask".
type HTTPConfirmationOracle struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

type confirmationResponse struct {
	Confirmed bool `json:"confirmed"`
}

// NewHTTPConfirmationOracle creates an oracle against the given base URL.
func NewHTTPConfirmationOracle(baseURL string) *HTTPConfirmationOracle {
	return &HTTPConfirmationOracle{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: defLogger{},
	}
}

// WithHTTPClient overrides the HTTP client, e.g. to share transports or
// tighten timeouts.
func (o *HTTPConfirmationOracle) WithHTTPClient(client *http.Client) *HTTPConfirmationOracle {
	if client != nil {
		o.client = client
	}
	return o
}

func (o *HTTPConfirmationOracle) WithLogger(logger Logger) *HTTPConfirmationOracle {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// IsConfirmed implements ConfirmationOracle. Unknown emails report false.
func (o *HTTPConfirmationOracle) IsConfirmed(ctx context.Context, email string) (bool, error) {
	endpoint := fmt.Sprintf("%s/members/%s/confirmation", o.baseURL, url.PathEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build confirmation request")
	}

	res, err := o.client.Do(req)
	if err != nil {
		o.logger.Error("confirmation oracle request failed", "error", err)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "confirmation module unreachable").
			WithTextCode("CONFIRMATION_UNREACHABLE")
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.StatusCode != http.StatusOK:
		o.logger.Error("confirmation oracle unexpected status", "status", res.StatusCode)
		return false, goerrors.New("confirmation module returned an unexpected status", goerrors.CategoryInternal).
			WithTextCode("CONFIRMATION_UNREACHABLE").
			WithMetadata(map[string]any{"status": res.StatusCode})
	}

	var payload confirmationResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "could not decode confirmation response")
	}

	return payload.Confirmed, nil
}

var _ ConfirmationOracle = (*HTTPConfirmationOracle)(nil)
