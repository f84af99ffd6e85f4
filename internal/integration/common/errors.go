package common

import (
	"errors"

	retry "github.com/avast/retry-go/v4"

	"github.com/futig/rag-backend/internal/entity"
	pkghttp "github.com/futig/rag-backend/pkg/http"
)

// Retryable reports whether a connector error is worth another attempt:
// transport failures, rate limits and server-side errors. Client errors
// (bad request, auth) fail immediately.
func Retryable(err error) bool {
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	return false
}

// RetryIf is the shared retry predicate for provider connectors.
var RetryIf = retry.RetryIf(Retryable)

// AsProviderError converts a connector failure into the structured provider
// error surfaced to callers.
func AsProviderError(provider string, err error) *entity.ProviderError {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return &entity.ProviderError{
			Provider: provider,
			Status:   httpErr.StatusCode,
			Message:  httpErr.Message,
		}
	}
	return &entity.ProviderError{
		Provider: provider,
		Message:  err.Error(),
	}
}
