package payment

type InitiateResponse struct {
	CheckoutURL string `json:"checkout_url" example:"https://checkout.chapa.co/checkout/payment/abc"`
	TxRef       string `json:"tx_ref" example:"tx-3f0c9a7e-4b8d-4e57-9a4c-1f2b3c4d5e6f"`
}

type VerifyResponse struct {
	Message string `json:"message" example:"Payment verified successfully"`
}

type ReturnResponse struct {
	Message string `json:"message"`
	TxRef   string `json:"tx_ref,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"tx_ref is required"`
}
