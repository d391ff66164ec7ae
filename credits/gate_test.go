package credits

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockChecker implements the Checker interface for testing
type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) HasEnoughCredits(ctx context.Context, email string, required int64) bool {
	args := m.Called(ctx, email, required)
	return args.Bool(0)
}

func (m *MockChecker) CanAccessTierFeature(ctx context.Context, email string) bool {
	args := m.Called(ctx, email)
	return args.Bool(0)
}

func TestNewGate(t *testing.T) {
	t.Parallel()

	t.Run("panics with nil checker", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			NewGate(nil)
		})
	})
}

func TestGate_Authorize(t *testing.T) {
	t.Parallel()

	t.Run("allows when balance and tier pass", func(t *testing.T) {
		t.Parallel()
		checker := &MockChecker{}
		gate := NewGate(checker)

		checker.On("HasEnoughCredits", mock.Anything, "a@example.com", int64(2)).Return(true)
		checker.On("CanAccessTierFeature", mock.Anything, "a@example.com").Return(true)

		d := gate.Authorize(context.Background(), "a@example.com", 2, true)

		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonOK, d.Reason)
	})

	t.Run("skips the tier check for plain actions", func(t *testing.T) {
		t.Parallel()
		checker := &MockChecker{}
		gate := NewGate(checker)

		checker.On("HasEnoughCredits", mock.Anything, mock.Anything, int64(1)).Return(true)

		d := gate.Authorize(context.Background(), "a@example.com", 1, false)

		assert.True(t, d.Allowed)
		checker.AssertNotCalled(t, "CanAccessTierFeature", mock.Anything, mock.Anything)
	})

	t.Run("denies on insufficient balance", func(t *testing.T) {
		t.Parallel()
		checker := &MockChecker{}
		gate := NewGate(checker)

		checker.On("HasEnoughCredits", mock.Anything, mock.Anything, int64(5)).Return(false)

		d := gate.Authorize(context.Background(), "a@example.com", 5, false)

		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonInsufficientCredits, d.Reason)
	})

	t.Run("denies on restricted tier", func(t *testing.T) {
		t.Parallel()
		checker := &MockChecker{}
		gate := NewGate(checker)

		checker.On("HasEnoughCredits", mock.Anything, mock.Anything, int64(2)).Return(true)
		checker.On("CanAccessTierFeature", mock.Anything, mock.Anything).Return(false)

		d := gate.Authorize(context.Background(), "a@example.com", 2, true)

		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonTierRestricted, d.Reason)
	})

	t.Run("balance shortfall wins over tier restriction", func(t *testing.T) {
		// Users short on both see the top-up prompt, not the upgrade prompt.
		t.Parallel()
		checker := &MockChecker{}
		gate := NewGate(checker)

		checker.On("HasEnoughCredits", mock.Anything, mock.Anything, int64(3)).Return(false)

		d := gate.Authorize(context.Background(), "a@example.com", 3, true)

		assert.Equal(t, ReasonInsufficientCredits, d.Reason)
		checker.AssertNotCalled(t, "CanAccessTierFeature", mock.Anything, mock.Anything)
	})
}
