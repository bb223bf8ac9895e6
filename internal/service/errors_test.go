package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/hotel-booking/internal/repository"
)

func errRoomFull() error      { return repository.ErrRoomFull }
func errBookingExists() error { return repository.ErrBookingExists }
func errRoomNotFound() error  { return repository.ErrRoomNotFound }

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", forbidden(MsgNoVacancies))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, &Error{Kind: KindForbidden, Message: MsgNoVacancies})
	assert.NotErrorIs(t, err, &Error{Kind: KindForbidden, Message: MsgAlreadyBooked})
	assert.False(t, errors.Is(errors.New("x"), ErrForbidden))
}

func TestError_String(t *testing.T) {
	assert.Equal(t, "PaymentRequired: ticket has not been paid", paymentRequired(MsgTicketNotPaid).Error())
	assert.Equal(t, "NotFound", KindNotFound.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}
