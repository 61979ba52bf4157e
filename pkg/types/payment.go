package types

import "github.com/samber/lo"

type PaymentMethod string

const (
	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodManual   PaymentMethod = "manual"
	PaymentMethodOther    PaymentMethod = "other"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodPix,
	PaymentMethodTransfer,
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodManual,
	PaymentMethodOther,
}

func (m PaymentMethod) Valid() bool {
	return lo.Contains(PaymentMethods, m)
}

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
)
