package gating_test

import (
	"fmt"

	"github.com/cwbudde/algo-gate/gating"
	"github.com/cwbudde/algo-gate/matrix"
	"github.com/cwbudde/algo-gate/roi"
)

func ExampleGated() {
	m, _ := matrix.New(2, 6, []float64{
		1, 2, 3, 4, 5, 6,
		10, 20, 30, 40, 50, 60,
	})
	plus, _ := roi.Restore(1, 1, roi.Plus)
	minus, _ := roi.Restore(3, 4, roi.Minus)

	k, _ := gating.Suppression([]roi.Region{plus}, []roi.Region{minus})
	gated, _ := gating.Gated(m, []roi.Region{plus}, []roi.Region{minus})
	variance, _ := gating.Error(m, []roi.Region{plus}, []roi.Region{minus})

	fmt.Println("suppression:", k)
	fmt.Println("gated:", gated)
	fmt.Println("error:", variance)
	// Output:
	// suppression: 0.5
	// gated: [-2.5 -25]
	// error: [4.25 42.5]
}
