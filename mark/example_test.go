package mark_test

import (
	"fmt"

	"github.com/yyyoichi/stegmark/mark"
)

// ExampleCodec shows the default chain surviving a damaged byte.
func ExampleCodec() {
	c, _ := mark.New(mark.DefaultSize)
	code, _ := c.Encode("HELLO")
	fmt.Println(c.Name(), len(code))

	code[10] ^= 0xff
	d, err := c.Decode(code)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%q\n", d.Text[:5])
	fmt.Println(d.SymbolCorrections, d.Reliable)
	// Output:
	// hamming15_11+rs10 85
	// "HELLO"
	// 1 true
}

func ExampleWithGolay() {
	c, _ := mark.New(12, mark.WithGolay(), mark.WithParity(4))
	fmt.Println(c.Name(), c.EncodedLen())
	// Output:
	// golay23_12+rs4 27
}
