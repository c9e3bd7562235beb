package roi_test

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-gate/roi"
)

func ExampleNewInteractive() {
	// The visible axis spans channels 0..2000; a new gate starts as a thin
	// strip in the middle of it.
	r, err := roi.NewInteractive(0, 2000, roi.DefaultFill, roi.Plus)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(r, "width", r.Width())
	// Output:
	// plus[970,1030] width 61
}

func ExampleWriteList() {
	var s roi.Set
	plus, _ := roi.Restore(1170, 1176, roi.Plus)
	minus, _ := roi.Restore(1180, 1193, roi.Minus)
	_ = s.Add(plus, minus)

	_ = roi.WriteList(os.Stdout, &s)
	// Output:
	// PlusRois: 1
	// MinusRois: 1
	// GroupRois: 0
	// 1170 1176
	// 1180 1193
}
