package models

// MaskCardToken renders a card token for logs and error messages. At most
// the last four characters survive; anything shorter masks entirely.
func MaskCardToken(cardToken string) string {
	if len(cardToken) < 4 {
		return "****"
	}
	return "**** " + cardToken[len(cardToken)-4:]
}
