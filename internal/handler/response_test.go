package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/blues/campaignd/internal/logic"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&logic.ValidationError{Reason: logic.ReasonNotFound, Message: "Campaign not found"}, http.StatusNotFound},
		{&logic.ValidationError{Reason: logic.ReasonNotOwner}, http.StatusForbidden},
		{&logic.ValidationError{Reason: logic.ReasonInvalidAmount}, http.StatusUnprocessableEntity},
		{&logic.ConnectionError{Message: "Wallet not connected"}, http.StatusServiceUnavailable},
		{&logic.RemoteError{Op: logic.OpDonate, Err: errors.New("reverted")}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
