package display

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samplecodes/testkata/internal/apperr"
)

// MockNameLookup is a mock implementation of NameLookup.
type MockNameLookup struct {
	mock.Mock
}

func (m *MockNameLookup) GetUserName(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func TestFormatter_FormatUserDisplay(t *testing.T) {
	ctx := context.Background()
	names := new(MockNameLookup)
	names.On("GetUserName", ctx, "1").Return("Test Taro", nil)

	result, err := NewFormatter(names).FormatUserDisplay(ctx, "1")
	require.NoError(t, err)

	assert.Equal(t, "Display name: Test Taro", result)
	names.AssertCalled(t, "GetUserName", ctx, "1")
	names.AssertNumberOfCalls(t, "GetUserName", 1)
}

func TestFormatter_AnyName(t *testing.T) {
	tests := []struct {
		id   string
		name string
	}{
		{"1", "Alice"},
		{"2", ""},
		{"3", "名前"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			f := NewFormatter(LookupFunc(func(_ context.Context, id string) (string, error) {
				assert.Equal(t, tt.id, id)
				return tt.name, nil
			}))

			got, err := f.FormatUserDisplay(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, DisplayPrefix+tt.name, got)
		})
	}
}

func TestFormatter_PropagatesLookupError(t *testing.T) {
	ctx := context.Background()
	lookupErr := apperr.New(apperr.KindNotFound, "user not found")
	names := new(MockNameLookup)
	names.On("GetUserName", ctx, "404").Return("", lookupErr)

	result, err := NewFormatter(names).FormatUserDisplay(ctx, "404")

	assert.Empty(t, result)
	assert.Same(t, lookupErr, err)
}

func TestFormatter_PropagatesPlainError(t *testing.T) {
	plain := errors.New("lookup exploded")
	f := NewFormatter(LookupFunc(func(context.Context, string) (string, error) {
		return "", plain
	}))

	_, err := f.FormatUserDisplay(context.Background(), "x")
	assert.Same(t, plain, err)
}
