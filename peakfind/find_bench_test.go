package peakfind

import (
	"context"
	"testing"
)

func BenchmarkFind(b *testing.B) {
	spec := twoPeaks(20)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := Find(ctx, spec); err != nil {
			b.Fatal(err)
		}
	}
}
