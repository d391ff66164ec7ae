package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pixelmuse/pixelmuse/credits"
)

// MockAuthorizer implements the Authorizer interface for testing
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Authorize(ctx context.Context, email string, requiredCredits int64, tierFeature bool) credits.Decision {
	args := m.Called(ctx, email, requiredCredits, tierFeature)
	return args.Get(0).(credits.Decision)
}

// MockDebiter implements the Debiter interface for testing
type MockDebiter struct {
	mock.Mock
}

func (m *MockDebiter) UseCredits(ctx context.Context, email string, amount int64) (*credits.Account, error) {
	args := m.Called(ctx, email, amount)
	if acc := args.Get(0); acc != nil {
		return acc.(*credits.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClient implements the Client interface for testing
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Generate(ctx context.Context, req Request) (*Image, error) {
	args := m.Called(ctx, req)
	if img := args.Get(0); img != nil {
		return img.(*Image), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allowed() credits.Decision {
	return credits.Decision{Allowed: true, Reason: credits.ReasonOK}
}

func TestRequest_Cost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1), Request{Prompt: "cat"}.Cost())
	assert.Equal(t, int64(1), Request{Prompt: "cat", Subjects: 1}.Cost())
	assert.Equal(t, int64(3), Request{Prompt: "cats", Subjects: 3}.Cost())

	assert.False(t, Request{Prompt: "cat", Subjects: 1}.MultiSubject())
	assert.True(t, Request{Prompt: "cats", Subjects: 2}.MultiSubject())
}

func TestService_Generate(t *testing.T) {
	t.Parallel()

	t.Run("rejects an empty prompt", func(t *testing.T) {
		t.Parallel()
		gate, ledger, client := &MockAuthorizer{}, &MockDebiter{}, &MockClient{}
		svc := NewService(gate, ledger, client, testLogger())

		_, err := svc.Generate(context.Background(), "a@example.com", Request{})

		assert.ErrorIs(t, err, ErrEmptyPrompt)
		gate.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("generates and charges on success", func(t *testing.T) {
		t.Parallel()
		gate, ledger, client := &MockAuthorizer{}, &MockDebiter{}, &MockClient{}
		svc := NewService(gate, ledger, client, testLogger())
		ctx := context.Background()

		req := Request{Prompt: "a red fox in snow"}
		gate.On("Authorize", mock.Anything, "a@example.com", int64(1), false).Return(allowed())
		client.On("Generate", mock.Anything, req).Return(&Image{URL: "https://img.example/1.png"}, nil)
		ledger.On("UseCredits", mock.Anything, "a@example.com", int64(1)).
			Return(&credits.Account{ID: "acc-1", Credits: 9}, nil)

		result, err := svc.Generate(ctx, "a@example.com", req)

		require.NoError(t, err)
		assert.True(t, result.Charged)
		require.NotNil(t, result.Image)
		assert.Equal(t, "https://img.example/1.png", result.Image.URL)
		ledger.AssertExpectations(t)
	})

	t.Run("multi-subject scenes cost one credit per subject", func(t *testing.T) {
		t.Parallel()
		gate, ledger, client := &MockAuthorizer{}, &MockDebiter{}, &MockClient{}
		svc := NewService(gate, ledger, client, testLogger())

		req := Request{Prompt: "family portrait", Subjects: 4}
		gate.On("Authorize", mock.Anything, "a@example.com", int64(4), true).Return(allowed())
		client.On("Generate", mock.Anything, req).Return(&Image{URL: "https://img.example/2.png"}, nil)
		ledger.On("UseCredits", mock.Anything, "a@example.com", int64(4)).
			Return(&credits.Account{ID: "acc-1", Credits: 6}, nil)

		result, err := svc.Generate(context.Background(), "a@example.com", req)

		require.NoError(t, err)
		assert.True(t, result.Charged)
		gate.AssertExpectations(t)
	})

	t.Run("denied requests never reach the provider", func(t *testing.T) {
		t.Parallel()
		gate, ledger, client := &MockAuthorizer{}, &MockDebiter{}, &MockClient{}
		svc := NewService(gate, ledger, client, testLogger())

		gate.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(credits.Decision{Allowed: false, Reason: credits.ReasonInsufficientCredits})

		result, err := svc.Generate(context.Background(), "a@example.com", Request{Prompt: "cat"})

		require.NoError(t, err)
		assert.False(t, result.Decision.Allowed)
		assert.Equal(t, credits.ReasonInsufficientCredits, result.Decision.Reason)
		assert.Nil(t, result.Image)
		assert.False(t, result.Charged)
		client.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		ledger.AssertNotCalled(t, "UseCredits", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider failure never charges", func(t *testing.T) {
		t.Parallel()
		gate, ledger, client := &MockAuthorizer{}, &MockDebiter{}, &MockClient{}
		svc := NewService(gate, ledger, client, testLogger())

		gate.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(allowed())
		client.On("Generate", mock.Anything, mock.Anything).Return(nil, ErrGenerationFailed)

		_, err := svc.Generate(context.Background(), "a@example.com", Request{Prompt: "cat"})

		assert.ErrorIs(t, err, ErrGenerationFailed)
		ledger.AssertNotCalled(t, "UseCredits", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed debit still returns the image", func(t *testing.T) {
		// The provider has already done the expensive work; withholding the
		// image would not recover the charge.
		t.Parallel()
		gate, ledger, client := &MockAuthorizer{}, &MockDebiter{}, &MockClient{}
		svc := NewService(gate, ledger, client, testLogger())

		gate.On("Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(allowed())
		client.On("Generate", mock.Anything, mock.Anything).
			Return(&Image{URL: "https://img.example/3.png"}, nil)
		ledger.On("UseCredits", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		result, err := svc.Generate(context.Background(), "a@example.com", Request{Prompt: "cat"})

		require.NoError(t, err)
		require.NotNil(t, result.Image)
		assert.False(t, result.Charged)
	})
}
