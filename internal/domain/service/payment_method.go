package service

import (
	"b2bmarket/pkg/errors"
)

const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
)

// PaymentMethod describes one way a buyer may settle a deal.
type PaymentMethod struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Note    string `json:"note,omitempty"`
}

// PaymentMethodRegistry is the capability set offered when a buyer requests
// payment. Nothing here moves money; bank transfers are settled off-platform
// and confirmed by the supplier.
type PaymentMethodRegistry struct {
	methods []PaymentMethod
}

func NewPaymentMethodRegistry() *PaymentMethodRegistry {
	return &PaymentMethodRegistry{
		methods: []PaymentMethod{
			{Code: PaymentMethodBankTransfer, Name: "Bank transfer", Enabled: true},
			{Code: PaymentMethodCard, Name: "Card", Enabled: false, Note: "Card payments are not supported yet"},
		},
	}
}

func (r *PaymentMethodRegistry) List() []PaymentMethod {
	out := make([]PaymentMethod, len(r.methods))
	copy(out, r.methods)
	return out
}

// Resolve validates the requested method. An empty code selects bank transfer.
func (r *PaymentMethodRegistry) Resolve(code string) (string, error) {
	if code == "" {
		return PaymentMethodBankTransfer, nil
	}
	for _, m := range r.methods {
		if m.Code != code {
			continue
		}
		if !m.Enabled {
			return "", errors.NotImplemented(m.Note)
		}
		return m.Code, nil
	}
	return "", errors.BadRequest("Unknown payment method: "+code, nil)
}
