package service

import (
	"context"
	"errors"
	"testing"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContactService_Toggle_Off(t *testing.T) {
	store := new(MockContactStore)
	refresher := new(MockSummaryRefresher)
	store.On("SetAIActive", mock.Anything, testContact, false).Return(true, nil)
	store.On("HandOff", mock.Anything, testContact).Return(int64(2), true, nil)
	refresher.On("Refresh", mock.Anything, testContact, int64(2)).Return(false, errors.New("openai down"))

	state, err := NewContactService(store, refresher).Toggle(context.Background(), testContact, false)

	require.NoError(t, err)
	assert.Equal(t, &ContactState{ContactID: testContact, AIActive: false}, state)
	store.AssertExpectations(t)
	refresher.AssertExpectations(t)
}

func TestContactService_Toggle_OffWithoutOpenCard(t *testing.T) {
	store := new(MockContactStore)
	refresher := new(MockSummaryRefresher)
	store.On("SetAIActive", mock.Anything, testContact, false).Return(true, nil)
	store.On("HandOff", mock.Anything, testContact).Return(int64(0), false, nil)

	_, err := NewContactService(store, refresher).Toggle(context.Background(), testContact, false)

	require.NoError(t, err)
	refresher.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestContactService_Toggle_On(t *testing.T) {
	store := new(MockContactStore)
	store.On("SetAIActive", mock.Anything, testContact, true).Return(true, nil)

	state, err := NewContactService(store, nil).Toggle(context.Background(), testContact, true)

	require.NoError(t, err)
	assert.True(t, state.AIActive)
	store.AssertNotCalled(t, "HandOff", mock.Anything, mock.Anything)
}

func TestContactService_Toggle_UnknownContact(t *testing.T) {
	store := new(MockContactStore)
	store.On("SetAIActive", mock.Anything, "000", true).Return(false, nil)

	_, err := NewContactService(store, nil).Toggle(context.Background(), "000", true)

	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}
