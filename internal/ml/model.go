package ml

// Model es un modelo de regresión pre-entrenado con un contrato de entrada fijo.
type Model interface {
	// TrainedColumns devuelve las columnas en el orden de entrenamiento.
	TrainedColumns() []string
	// Predict puntúa filas cuyos valores siguen el orden de TrainedColumns.
	Predict(rows [][]float64) ([]float64, error)
}
