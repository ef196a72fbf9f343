package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/account-client/internal/mocks"
	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/testutil"
)

func sampleDevices() []model.SessionDevice {
	now := time.Now()
	return []model.SessionDevice{
		{ID: "s1", IP: "10.0.0.1", Browser: "Chrome", OS: "Linux", LastSeen: now, IsCurrent: true},
		{ID: "s2", IP: "10.0.0.2", Browser: "Mobile Safari", OS: "iOS", LastSeen: now.Add(-time.Hour)},
		{ID: "s3", IP: "10.0.0.3", Browser: "Firefox", OS: "Windows", LastSeen: now.Add(-24 * time.Hour), Remember: true},
	}
}

func TestRegistry_List(t *testing.T) {
	api := mocks.NewSessionAPI(t)
	api.On("Sessions", mock.Anything).Return(sampleDevices(), nil).Once()

	r := NewRegistry(api, testutil.MakeNoopLogger())
	devices, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 3)

	devices[0].ID = "tampered"
	assert.Equal(t, "s1", r.Cached()[0].ID)
}

func TestRegistry_ListError(t *testing.T) {
	api := mocks.NewSessionAPI(t)
	api.On("Sessions", mock.Anything).Return(nil, &model.APIError{Kind: model.KindServer, Status: 500, Message: "boom"}).Once()

	r := NewRegistry(api, testutil.MakeNoopLogger())
	_, err := r.List(context.Background())
	assert.ErrorIs(t, err, model.ErrServer)
	assert.Empty(t, r.Cached())
}

func TestRegistry_Revoke(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		apiErr      error
		callsAPI    bool
		expectedErr error
		remaining   []string
	}{
		{
			name:      "other session is removed",
			id:        "s2",
			callsAPI:  true,
			remaining: []string{"s1", "s3"},
		},
		{
			name:        "current session is refused without network",
			id:          "s1",
			expectedErr: model.ErrCurrentSessionRevoke,
			remaining:   []string{"s1", "s2", "s3"},
		},
		{
			name:        "id missing from the list is refused without network",
			id:          "s9",
			expectedErr: model.ErrUnknownSession,
			remaining:   []string{"s1", "s2", "s3"},
		},
		{
			name:        "server failure keeps the row",
			id:          "s3",
			apiErr:      &model.APIError{Kind: model.KindValidation, Status: 404, Message: "Session not found"},
			callsAPI:    true,
			expectedErr: model.ErrValidation,
			remaining:   []string{"s1", "s2", "s3"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := mocks.NewSessionAPI(t)
			api.On("Sessions", mock.Anything).Return(sampleDevices(), nil).Once()
			if tt.callsAPI {
				api.On("RevokeSession", mock.Anything, tt.id).Return(tt.apiErr).Once()
			}

			r := NewRegistry(api, testutil.MakeNoopLogger())
			_, err := r.List(context.Background())
			require.NoError(t, err)

			err = r.Revoke(context.Background(), tt.id)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			var ids []string
			for _, d := range r.Cached() {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.remaining, ids)
		})
	}
}

func TestRegistry_RevokeBeforeList(t *testing.T) {
	api := mocks.NewSessionAPI(t)

	r := NewRegistry(api, testutil.MakeNoopLogger())

	assert.ErrorIs(t, r.Revoke(context.Background(), "s1"), model.ErrUnknownSession)
	assert.ErrorIs(t, r.Revoke(context.Background(), "s2"), model.ErrUnknownSession)
	api.AssertNotCalled(t, "RevokeSession", mock.Anything, mock.Anything)
}

func TestRegistry_RevokeAllOthers(t *testing.T) {
	api := mocks.NewSessionAPI(t)
	api.On("Sessions", mock.Anything).Return(sampleDevices(), nil).Once()
	api.On("RevokeOtherSessions", mock.Anything).Return(nil).Once()

	r := NewRegistry(api, testutil.MakeNoopLogger())
	_, err := r.List(context.Background())
	require.NoError(t, err)

	require.NoError(t, r.RevokeAllOthers(context.Background()))

	cached := r.Cached()
	require.Len(t, cached, 1)
	assert.True(t, cached[0].IsCurrent)
}

func TestRegistry_RevokeAllOthersFailure(t *testing.T) {
	api := mocks.NewSessionAPI(t)
	api.On("Sessions", mock.Anything).Return(sampleDevices(), nil).Once()
	api.On("RevokeOtherSessions", mock.Anything).Return(errors.New("boom")).Once()

	r := NewRegistry(api, testutil.MakeNoopLogger())
	_, err := r.List(context.Background())
	require.NoError(t, err)

	require.Error(t, r.RevokeAllOthers(context.Background()))
	assert.Len(t, r.Cached(), 3)
}
