package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_FormatsScraperKindMessage(t *testing.T) {
	err := NewError("fastpeoplesearch", KindBlocked, "request refused with status 429")
	assert.Equal(t, "fastpeoplesearch: blocked: request refused with status 429", err.Error())
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError("echo", KindTransport, cause)

	assert.Equal(t, cause.Error(), err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(NewError("s", KindTimeout, "deadline")))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestClassify_PassesThroughClassifiedErrors(t *testing.T) {
	orig := NewError("truepeoplesearch", KindBlocked, "captcha interstitial")
	got := Classify("other", orig)

	require.NotNil(t, got)
	assert.Same(t, orig, got)
	assert.Equal(t, "truepeoplesearch", got.Scraper)
}

func TestClassify_MapsDeadlineToTimeout(t *testing.T) {
	got := Classify("echo", context.DeadlineExceeded)

	assert.Equal(t, KindTimeout, got.Kind)
	assert.Equal(t, "echo", got.Scraper)
	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestClassify_DefaultsToTransport(t *testing.T) {
	got := Classify("echo", errors.New("dns lookup failed"))

	assert.Equal(t, KindTransport, got.Kind)
	assert.Equal(t, "dns lookup failed", got.Message)
}
