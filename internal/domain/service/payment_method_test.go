package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"b2bmarket/pkg/errors"
)

func TestPaymentMethodRegistry_Resolve(t *testing.T) {
	registry := NewPaymentMethodRegistry()

	method, err := registry.Resolve("")
	assert.NoError(t, err)
	assert.Equal(t, PaymentMethodBankTransfer, method)

	method, err = registry.Resolve(PaymentMethodBankTransfer)
	assert.NoError(t, err)
	assert.Equal(t, PaymentMethodBankTransfer, method)

	_, err = registry.Resolve(PaymentMethodCard)
	assert.True(t, errors.Is(err, errors.CodeNotImplemented))

	_, err = registry.Resolve("crypto")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestPaymentMethodRegistry_ListIsCopy(t *testing.T) {
	registry := NewPaymentMethodRegistry()

	methods := registry.List()
	methods[0].Enabled = false

	assert.True(t, registry.List()[0].Enabled)
	assert.Len(t, methods, 2)
}
