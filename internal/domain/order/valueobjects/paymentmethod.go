package valueobjects

// PaymentMethod distinguishes gateway-confirmed purchases from manual
// bank transfers. The two share one order state machine but diverge on
// the approval trigger: gateway orders approve on a confirmed payment
// event, manual orders only on explicit administrative action.
type PaymentMethod string

const (
	PaymentMethodGateway        PaymentMethod = "gateway"
	PaymentMethodManualTransfer PaymentMethod = "manual_transfer"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodGateway || m == PaymentMethodManualTransfer
}

// ParsePaymentMethod validates a raw method string, defaulting empty
// input to manual transfer.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	if raw == "" {
		return PaymentMethodManualTransfer, true
	}
	m := PaymentMethod(raw)
	return m, m.IsValid()
}
