package spe_test

import (
	"bytes"
	"fmt"

	"github.com/cwbudde/algo-gate/spe"
)

func ExampleWriteSPE() {
	var buf bytes.Buffer
	if err := spe.WriteSPE(&buf, "gate1.spe", []float64{0, 12, 7, 3}); err != nil {
		panic(err)
	}
	fmt.Println(buf.Len())

	s, err := spe.ReadSPE(&buf)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%q %v\n", s.Name, s.Data)
	// Output:
	// 56
	// "ate1.spe" [0 12 7 3]
}
