package domain

// FeatureVector — эмбеддинг изображения фиксированной размерности. После вычисления не изменяется.
type FeatureVector []float32

func (v FeatureVector) Dim() int { return len(v) }

// Embedding — результат работы экстрактора признаков
type Embedding struct {
	Vector       FeatureVector
	ModelVersion string
}

func NewEmbedding(vector FeatureVector, modelVersion string) *Embedding {
	return &Embedding{
		Vector:       vector,
		ModelVersion: modelVersion,
	}
}
