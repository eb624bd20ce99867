package validation

// Errors is a field-path-keyed validation failure usable as an error value.
// Services return it so handlers can render each message next to its input.
type Errors map[string]string

func (e Errors) Error() string {
	return "datos inválidos"
}
