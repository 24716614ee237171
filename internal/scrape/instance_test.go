package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadverify/internal/model"
	"github.com/sells-group/leadverify/internal/ratelimit"
)

func TestBuild_ConstructsEnabledConfigsInOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register("first", stubConstructor(&stubScraper{name: "first", parallel: true}))
	reg.Register("second", stubConstructor(&stubScraper{name: "second"}))

	instances, err := Build(reg, []Config{
		{Name: "second"},
		{Name: "first"},
	})
	require.NoError(t, err)
	require.Len(t, instances, 2)

	assert.Equal(t, "second", instances[0].Name())
	assert.Equal(t, "first", instances[1].Name())
}

func TestBuild_SkipsDisabledWithoutConstructing(t *testing.T) {
	constructed := 0
	reg := NewRegistry()
	reg.Register("tracked", func(Options) (Scraper, error) {
		constructed++
		return &stubScraper{name: "tracked"}, nil
	})

	off := false
	instances, err := Build(reg, []Config{{Name: "tracked", Enabled: &off}})
	require.NoError(t, err)

	assert.Empty(t, instances)
	assert.Zero(t, constructed)
}

func TestBuild_RejectsUnknownIdentifier(t *testing.T) {
	_, err := Build(NewRegistry(), []Config{{Name: "ghost"}})
	require.Error(t, err)
	assert.Equal(t, KindInvalidConfig, KindOf(err))
}

func TestBuild_RejectsDuplicateIdentifier(t *testing.T) {
	reg := NewRegistry()
	reg.Register("echo", NewEchoScraper)

	_, err := Build(reg, []Config{{Name: "echo"}, {Name: "echo"}})
	require.Error(t, err)
	assert.Equal(t, KindInvalidConfig, KindOf(err))
	assert.ErrorContains(t, err, "duplicate scraper identifier")
}

func TestBuild_ClassifiesConstructorRejections(t *testing.T) {
	reg := NewRegistry()
	reg.Register("strict", func(Options) (Scraper, error) {
		return nil, errors.New("unusable options")
	})

	_, err := Build(reg, []Config{{Name: "strict"}})
	require.Error(t, err)
	assert.Equal(t, KindInvalidConfig, KindOf(err))

	// Constructors that classify their own rejections keep their kind.
	reg.Register("classified", func(Options) (Scraper, error) {
		return nil, NewError("classified", KindInvalidConfig, "bad base_url")
	})
	_, err = Build(reg, []Config{{Name: "classified"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "bad base_url")
}

func TestBuild_SerializesNonParallelScrapers(t *testing.T) {
	reg := NewRegistry()
	reg.Register("serial", stubConstructor(&stubScraper{name: "serial", parallel: false}))
	reg.Register("parallel", stubConstructor(&stubScraper{name: "parallel", parallel: true}))

	instances, err := Build(reg, []Config{{Name: "serial"}, {Name: "parallel"}})
	require.NoError(t, err)
	require.Len(t, instances, 2)

	assert.NotNil(t, instances[0].mu)
	assert.Nil(t, instances[1].mu)
}

func TestInstanceVerify_StampsSourceAndTime(t *testing.T) {
	inst := &Instance{
		name:    "stub",
		impl:    &stubScraper{name: "stub", fields: map[string]string{model.FieldEmail: "a@b.c"}},
		limiter: ratelimit.New(0, 0),
	}

	res, err := inst.Verify(context.Background(), model.Lead{FullName: "Jane Doe"})
	require.NoError(t, err)

	assert.Equal(t, "stub", res.Source)
	assert.False(t, res.At.IsZero())
	assert.Equal(t, "a@b.c", res.Fields[model.FieldEmail])
}

func TestInstanceVerify_PropagatesScraperError(t *testing.T) {
	inst := &Instance{
		name:    "stub",
		impl:    &stubScraper{name: "stub", err: NewError("stub", KindBlocked, "challenge")},
		limiter: ratelimit.New(0, 0),
	}

	res, err := inst.Verify(context.Background(), model.Lead{FullName: "Jane Doe"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindBlocked, KindOf(err))
}

func TestInstanceVerify_HoldsForConfiguredDelay(t *testing.T) {
	inst := &Instance{
		name:    "stub",
		impl:    &stubScraper{name: "stub"},
		limiter: ratelimit.New(0, 30*time.Millisecond),
	}

	start := time.Now()
	_, err := inst.Verify(context.Background(), model.Lead{FullName: "Jane Doe"})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestInstanceVerify_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	impl := &stubScraper{name: "stub"}
	inst := &Instance{name: "stub", impl: impl, limiter: ratelimit.New(0, 0)}

	_, err := inst.Verify(ctx, model.Lead{FullName: "Jane Doe"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, impl.calls)
}
