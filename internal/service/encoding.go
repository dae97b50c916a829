package service

import "farm-credit/internal/ml"

// UnknownCategoryCode es el código que recibe una etiqueta fuera del vocabulario del encoder.
const UnknownCategoryCode = -1

// SafeEncode codifica label con enc. Una etiqueta desconocida (o un encoder
// ausente) se degrada a UnknownCategoryCode: nunca bloquea la predicción.
func SafeEncode(enc ml.Encoder, label string) int {
	if enc == nil {
		return UnknownCategoryCode
	}
	code, err := enc.Encode(label)
	if err != nil {
		return UnknownCategoryCode
	}
	return code
}
