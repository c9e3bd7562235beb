package matrix

import "testing"

func benchMatrix(n int) *Matrix {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = float64(i % 97)
	}
	m, _ := New(n, n, data)
	return m
}

func BenchmarkColumnSum(b *testing.B) {
	m := benchMatrix(4096)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		_, _ = m.ColumnSum(1000, 1020)
	}
}

func BenchmarkProjectX(b *testing.B) {
	m := benchMatrix(1024)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		_ = m.ProjectX()
	}
}
